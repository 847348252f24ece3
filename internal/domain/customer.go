package domain

// Customer is the account summary the backend returns on login.
type Customer struct {
	ID    FlexibleID `json:"id"`
	Name  string     `json:"nome"`
	Email string     `json:"email"`
}

// Credentials is the body of POST /api/auth/login.
type Credentials struct {
	Email    string `json:"email" validate:"required,contactemail"`
	Password string `json:"senha" validate:"required"`
}

// Registration is the body of POST /api/auth/register. PasswordConfirm is
// checked locally and never sent.
type Registration struct {
	Name            string `json:"nome" validate:"required"`
	Email           string `json:"email" validate:"required,contactemail"`
	Password        string `json:"senha" validate:"required,min=6"`
	PasswordConfirm string `json:"-" validate:"required,eqfield=Password"`
}

// AuthResult is the backend's reply to login and register.
type AuthResult struct {
	Success  bool      `json:"sucesso"`
	Token    string    `json:"token,omitempty"`
	Customer *Customer `json:"cliente,omitempty"`
	Message  string    `json:"mensagem,omitempty"`
	Error    string    `json:"erro,omitempty"`
}

// Ack is the generic {sucesso, mensagem} reply.
type Ack struct {
	Success bool   `json:"sucesso"`
	Message string `json:"mensagem,omitempty"`
	Error   string `json:"erro,omitempty"`
}

// Subscription is the body of POST /api/contato.
type Subscription struct {
	Email string `json:"email" validate:"required,contactemail"`
}
