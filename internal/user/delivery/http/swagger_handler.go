package http

// Register godoc
// @Summary Register a new user
// @Description Create an account with the user role and start a session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{username=string,email=string,password=string} true "User registration data"
// @Success 201 {object} command.AuthResult
// @Failure 400 {object} Response "Validation failed or user already exists"
// @Failure 500 {object} Response
// @Router /api/auth/register [post]
func (h *UserHandler) RegisterDoc() {}

// Login godoc
// @Summary User login
// @Description Authenticate by email and password. The token is also set as an httpOnly cookie.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} command.AuthResult
// @Failure 400 {object} Response "Invalid credentials"
// @Router /api/auth/login [post]
func (h *UserHandler) LoginDoc() {}

// Logout godoc
// @Summary Logout
// @Description Clear the session cookie
// @Tags Auth
// @Produce json
// @Success 200 {object} object{message=string}
// @Router /api/auth/logout [post]
func (h *UserHandler) LogoutDoc() {}

// Me godoc
// @Summary Current user
// @Tags Auth
// @Security CookieAuth
// @Security BearerAuth
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/auth/me [get]
func (h *UserHandler) MeDoc() {}
