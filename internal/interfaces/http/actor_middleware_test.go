package http_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/tu-usuario/stockwatch-api/internal/interfaces/http"
	pkgjwt "github.com/tu-usuario/stockwatch-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

const (
	testJWTSecret = "test-secret-key-for-unit-tests"
	testActor     = "ana@tienda.test"
	testIssuer    = "stockwatch-test"
	testExpMin    = 60
)

// buildTestApp construye una app Fiber mínima con el middleware de actor y un
// handler que devuelve el actor extraído.
func buildTestApp() *fiber.App {
	app := fiber.New()
	app.Get("/whoami", apphttp.ActorMiddleware(testJWTSecret), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"actor": apphttp.GetActor(c)})
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, authHeader string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func actorFrom(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body["actor"]
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests ActorMiddleware
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: token válido → el actor queda disponible para la auditoría.
func TestActorMiddleware_TokenValido_ExtraeActor(t *testing.T) {
	app := buildTestApp()
	tok, err := pkgjwt.Generate(testJWTSecret, testActor, testIssuer, testExpMin)
	require.NoError(t, err, "debe generarse un token JWT válido")

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, testActor, actorFrom(t, resp))
}

// Caso 2: sin Authorization → la petición pasa con actor vacío (el token es
// opcional; la autorización vive en el gateway).
func TestActorMiddleware_SinHeader_PasaConActorVacio(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode,
		"sin token la petición debe pasar igual")
	assert.Empty(t, actorFrom(t, resp))
}

// Caso 3: token presente pero inválido → 401 (no se registra auditoría falsa).
func TestActorMiddleware_TokenInvalido_Retorna401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Bearer token.invalido.aqui")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "INVALID_TOKEN")
}

// Caso 4: formato de header incorrecto → 401.
func TestActorMiddleware_FormatoIncorrecto_Retorna401(t *testing.T) {
	app := buildTestApp()
	resp := doRequest(t, app, "Basic dXNlcjpwYXNz")
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// Caso 5: token expirado → 401.
func TestActorMiddleware_TokenExpirado_Retorna401(t *testing.T) {
	app := buildTestApp()
	tok, err := pkgjwt.Generate(testJWTSecret, testActor, testIssuer, -1)
	require.NoError(t, err)

	resp := doRequest(t, app, "Bearer "+tok)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Tests JWT pkg — integridad del generate/parse
// ──────────────────────────────────────────────────────────────────────────────

func TestJWT_GenerateAndParse(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testActor, testIssuer, testExpMin)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	actor, err := pkgjwt.ParseActor(testJWTSecret, tok)
	require.NoError(t, err)
	assert.Equal(t, testActor, actor)
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testJWTSecret, testActor, testIssuer, testExpMin)
	require.NoError(t, err)

	_, err = pkgjwt.ParseActor("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}
