package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/repository"
	"neuroclinic-server/internal/services"
	"neuroclinic-server/internal/utils"
)

// UserHandler handles user administration and patient intake.
type UserHandler struct {
	Users *services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(users *services.UserService) *UserHandler {
	return &UserHandler{Users: users}
}

// CreateUserRequest represents the request body for creating a user by an admin.
type CreateUserRequest struct {
	FirstName string     `json:"firstName" binding:"required,max=100"`
	LastName  string     `json:"lastName" binding:"max=100"`
	Email     string     `json:"email" binding:"required,email"`
	Password  string     `json:"password" binding:"required,min=8"`
	Role      string     `json:"role" binding:"required,oneof=admin doctor patient receptionist nurse"`
	DNI       string     `json:"dni" binding:"max=20"`
	Phone     string     `json:"phone" binding:"max=30"`
	Birthday  *time.Time `json:"birthday"`
}

func (r CreateUserRequest) input() services.UserInput {
	return services.UserInput{
		Email:     r.Email,
		Password:  r.Password,
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Role:      models.Role(r.Role),
		DNI:       r.DNI,
		Phone:     r.Phone,
		Birthday:  r.Birthday,
	}
}

// CreateUser handles creating a new user (admin).
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, err := h.Users.Create(c.Request.Context(), req.input())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "User created successfully", user.Sanitize())
}

// RegisterPatientRequest is the front desk intake form.
type RegisterPatientRequest struct {
	FirstName string    `json:"firstName" binding:"required,max=100"`
	LastName  string    `json:"lastName" binding:"required,max=100"`
	Email     string    `json:"email" binding:"required,email"`
	Password  string    `json:"password" binding:"required,min=8"`
	DNI       string    `json:"dni" binding:"required,max=20"`
	Phone     string    `json:"phone" binding:"max=30"`
	Birthday  time.Time `json:"birthday" binding:"required"`
}

// RegisterPatient creates a patient account (receptionist, admin).
func (h *UserHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}
	user, err := h.Users.RegisterPatient(c.Request.Context(), services.UserInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		DNI:       req.DNI,
		Phone:     req.Phone,
		Birthday:  &req.Birthday,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Created(c, "Patient registered successfully", user.Sanitize())
}

// UserPage is a paginated user listing.
type UserPage struct {
	Users []models.UserSanitized `json:"users"`
	Total int64                  `json:"total"`
}

// GetUsers lists users, optionally filtered by role and name (admin).
func (h *UserHandler) GetUsers(c *gin.Context) {
	f := repository.UserFilter{
		Role:   models.Role(c.Query("role")),
		Search: c.Query("search"),
		Limit:  parseQueryInt(c, "limit", 20),
		Offset: parseQueryInt(c, "offset", 0),
	}
	if f.Role != "" && !f.Role.IsValid() {
		utils.BadRequest(c, "Invalid role filter")
		return
	}
	users, total, err := h.Users.List(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Users fetched successfully", UserPage{Users: models.SanitizeUsers(users), Total: total})
}

// GetUserByID handles fetching a user by ID (admin).
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	user, err := h.Users.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "User fetched successfully", user.Sanitize())
}

// UpdateUserRequest represents the request body for updating a user by an admin.
type UpdateUserRequest struct {
	FirstName *string    `json:"firstName" binding:"omitempty,max=100"`
	LastName  *string    `json:"lastName" binding:"omitempty,max=100"`
	Email     *string    `json:"email" binding:"omitempty,email"`
	Role      *string    `json:"role" binding:"omitempty,oneof=admin doctor patient receptionist nurse"`
	DNI       *string    `json:"dni" binding:"omitempty,max=20"`
	Phone     *string    `json:"phone" binding:"omitempty,max=30"`
	Birthday  *time.Time `json:"birthday"`
	Password  *string    `json:"password" binding:"omitempty,min=8"`
}

// UpdateUser handles updating a user (admin).
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	in := services.UserUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		DNI:       req.DNI,
		Phone:     req.Phone,
		Birthday:  req.Birthday,
		Password:  req.Password,
	}
	if req.Role != nil {
		role := models.Role(*req.Role)
		in.Role = &role
	}

	user, err := h.Users.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "User updated successfully", user.Sanitize())
}

// DeleteUser handles deleting a user (admin).
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := parseUUID(c, "id")
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), actor, id); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "User deleted successfully", nil)
}

// SearchPatients powers the front desk patient lookup.
func (h *UserHandler) SearchPatients(c *gin.Context) {
	patients, err := h.Users.SearchPatients(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.Success(c, "Patients fetched successfully", models.SanitizeUsers(patients))
}
