package postgres

const (
	insertCustomer = `
		INSERT INTO customers (customer_id, full_name, username, email, phone_number, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	updateCustomer = `
		UPDATE customers
		SET full_name    = COALESCE(NULLIF($2, ''), full_name),
		    username     = COALESCE(NULLIF($3, ''), username),
		    email        = COALESCE(NULLIF($4, ''), email),
		    phone_number = COALESCE(NULLIF($5, ''), phone_number)
		WHERE customer_id = $1`

	deleteCustomer = `DELETE FROM customers WHERE customer_id = $1`

	selectCustomer = `
		SELECT customer_id, full_name, username, email, phone_number, created_at
		FROM customers
		WHERE customer_id = $1`

	selectCustomers = `
		SELECT customer_id, full_name, username, email, phone_number, created_at
		FROM customers
		ORDER BY customer_id`

	insertCopilotEntity = `
		INSERT INTO copilot_entities (entity_id, customer_id, title, description, status, created_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6)`

	updateCopilotEntity = `
		UPDATE copilot_entities
		SET customer_id = COALESCE(NULLIF($2, ''), customer_id),
		    title       = COALESCE(NULLIF($3, ''), title),
		    description = COALESCE(NULLIF($4, ''), description),
		    status      = COALESCE(NULLIF($5, ''), status)
		WHERE entity_id = $1`

	deleteCopilotEntity = `DELETE FROM copilot_entities WHERE entity_id = $1`

	selectCopilotEntity = `
		SELECT entity_id, customer_id, title, description, status, created_at
		FROM copilot_entities
		WHERE entity_id = $1`

	selectCopilotEntities = `
		SELECT entity_id, customer_id, title, description, status, created_at
		FROM copilot_entities
		ORDER BY entity_id`
)
