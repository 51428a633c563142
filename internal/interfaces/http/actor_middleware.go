package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockwatch-api/internal/application/dto"
	"github.com/tu-usuario/stockwatch-api/pkg/jwt"
)

// LocalActor key para el actor de auditoría en Fiber.
const LocalActor = "actor"

// ActorMiddleware extrae el actor de auditoría del Bearer Token a c.Locals.
// El token es opcional: sin Authorization la petición sigue con actor vacío
// (la autorización vive en el gateway). Un token presente pero inválido sí
// se rechaza para no registrar auditoría falsa.
func ActorMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		actor, err := jwt.ParseActor(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalActor, actor)
		return c.Next()
	}
}

// GetActor devuelve el actor del contexto (después del middleware), o "".
func GetActor(c *fiber.Ctx) string {
	v := c.Locals(LocalActor)
	if v == nil {
		return ""
	}
	s, _ := v.(string)
	return s
}
