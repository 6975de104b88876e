package user

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

type UserController struct {
	Repo UserRepository
}

func NewUserController(repo UserRepository) *UserController {
	return &UserController{Repo: repo}
}

// ListUsers godoc
// @Summary      List staff members
// @Tags         users
// @Produce      json
// @Param        page query int false "Page number" default(1)
// @Param        limit query int false "Items per page" default(10)
// @Success      200 {object} map[string]interface{}
// @Router       /api/v1/users [get]
func (ctrl *UserController) ListUsers(c *fiber.Ctx) error {
	page, _ := strconv.ParseInt(c.Query("page", "1"), 10, 64)
	limit, _ := strconv.ParseInt(c.Query("limit", "10"), 10, 64)
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := make(map[string]interface{})
	if active := c.Query("is_active"); active != "" {
		filter["is_active"] = active == "true"
	}

	users, total, err := ctrl.Repo.List(c.UserContext(), filter, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to fetch users",
		})
	}

	return c.JSON(fiber.Map{
		"users": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// GetUser godoc
// @Summary      Get staff member by ID
// @Tags         users
// @Produce      json
// @Param        id path string true "User ID"
// @Success      200 {object} models.User
// @Failure      404 {string} string "User not found"
// @Router       /api/v1/users/{id} [get]
func (ctrl *UserController) GetUser(c *fiber.Ctx) error {
	user, err := ctrl.Repo.FindByID(c.UserContext(), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "User not found",
		})
	}

	return c.JSON(user)
}
