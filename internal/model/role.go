package model

// Role: роль пользователя. Отдельной таблицы ролей нет: у пользователя
// ровно одна роль, и меняется она только вне API (флаг --promote-admin).
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) IsAdmin() bool { return r == RoleAdmin }
