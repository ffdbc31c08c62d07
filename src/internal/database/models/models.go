package models

// AllModels returns all model types in foreign-key dependency order, parents first
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Task{},
		&Comment{},
		&Tag{},
		&TaskTag{},
	}
}

// DefaultTaskStatus is assigned to tasks created without a status
const DefaultTaskStatus = "pending"
