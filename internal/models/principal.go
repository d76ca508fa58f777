package models

// PrincipalKind вид аутентифицированного субъекта.
type PrincipalKind string

const (
	KindUser  PrincipalKind = "user"
	KindAdmin PrincipalKind = "admin"
)

// Valid сообщает, известен ли вид субъекта.
func (k PrincipalKind) Valid() bool {
	return k == KindUser || k == KindAdmin
}

// Principal субъект, извлечённый из проверенного токена.
type Principal struct {
	ID    string
	Email string
	Kind  PrincipalKind
}

// AuthResult результат успешной регистрации или входа пользователя.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// AdminAuthResult результат входа администратора.
type AdminAuthResult struct {
	Token string `json:"token"`
	Admin Admin  `json:"admin"`
}
