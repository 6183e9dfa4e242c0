package handler

// errorResponse is the standard error envelope returned on 4xx/5xx responses
// of the user routes.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	OldToken string `json:"oldToken"`
}

type forgotLoginRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// authResponse is returned whenever a token is issued for a user.
// Token is null on login failure.
type authResponse struct {
	UserID    string  `json:"userId,omitempty"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Address   string  `json:"address,omitempty"`
	Email     string  `json:"email,omitempty"`
	Username  string  `json:"username,omitempty"`
	Role      string  `json:"role,omitempty"`
	Token     *string `json:"token"`
	Message   string  `json:"message"`
}

type refreshResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message"`
}

type resetResponse struct {
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Message  string `json:"message"`
}

// --- Users ---

type registerRequest struct {
	FirstName   string `json:"firstName"   validate:"required,max=30"`
	LastName    string `json:"lastName"    validate:"required,max=30"`
	Username    string `json:"username"    validate:"required,min=4,max=20"`
	Email       string `json:"email"       validate:"required,email"`
	PhoneNumber string `json:"phoneNumber" validate:"required,phone"`
	HomeAddress string `json:"homeAddress" validate:"required"`
	Password    string `json:"password"    validate:"required,min=8"`
	Role        string `json:"role"        validate:"required,role"`
}

// updateUserRequest is a partial profile update; omitted or blank fields are
// left unchanged.
type updateUserRequest struct {
	FirstName   string `json:"firstName"   validate:"omitempty,max=30"`
	LastName    string `json:"lastName"    validate:"omitempty,max=30"`
	Username    string `json:"username"    validate:"omitempty,min=4,max=20"`
	Email       string `json:"email"       validate:"omitempty,email"`
	PhoneNumber string `json:"phoneNumber" validate:"omitempty,phone"`
	HomeAddress string `json:"homeAddress"`
	Password    string `json:"password"    validate:"omitempty,min=8"`
	Role        string `json:"role"        validate:"omitempty,role"`
}

type userResponse struct {
	UserID      string `json:"userId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Username    string `json:"username"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
	HomeAddress string `json:"homeAddress"`
	Role        string `json:"role"`
}
