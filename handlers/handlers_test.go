package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dicri/evidence-api/database"
	"github.com/dicri/evidence-api/middleware"
	"github.com/dicri/evidence-api/models"
	"github.com/dicri/evidence-api/services"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func raised(msg string) error {
	return &database.ProcedureError{Procedure: "dicri.sp_test", Code: database.RaiseExceptionCode, Message: msg}
}

type fakeUsuarios struct{ user *models.Usuario }

func (f *fakeUsuarios) Login(context.Context, string, string) (*models.Usuario, error) {
	return f.user, nil
}

type fakeExpedientes struct {
	row       database.Row
	rows      []database.Row
	err       error
	insertTec int
	estado    string
}

func (f *fakeExpedientes) Insert(_ context.Context, _ string, tecnicoID, _ int) (database.Row, error) {
	f.insertTec = tecnicoID
	return f.row, f.err
}

func (f *fakeExpedientes) SelectAll(_ context.Context, estado string) ([]database.Row, error) {
	f.estado = estado
	return f.rows, f.err
}

func (f *fakeExpedientes) SelectByID(context.Context, int) (database.Row, error) {
	return f.row, f.err
}

func (f *fakeExpedientes) UpdateStatus(context.Context, int, string, *string, int) error {
	return f.err
}

func (f *fakeExpedientes) Delete(context.Context, int, int) error {
	return f.err
}

type fakeIndicios struct {
	row      database.Row
	rows     []database.Row
	err      error
	inserted models.NuevoIndicio
}

func (f *fakeIndicios) Insert(_ context.Context, in models.NuevoIndicio) (database.Row, error) {
	f.inserted = in
	return f.row, f.err
}

func (f *fakeIndicios) SelectByExpediente(context.Context, int) ([]database.Row, error) {
	return f.rows, f.err
}

type fakeReportes struct {
	rows   []database.Row
	err    error
	filtro models.ReporteFiltro
}

func (f *fakeReportes) Get(_ context.Context, filtro models.ReporteFiltro) ([]database.Row, error) {
	f.filtro = filtro
	return f.rows, f.err
}

func (f *fakeReportes) TiposExpediente(context.Context) ([]database.Row, error) {
	return f.rows, f.err
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type testEnv struct {
	app         *fiber.App
	jwt         *middleware.JWT
	usuarios    *fakeUsuarios
	expedientes *fakeExpedientes
	indicios    *fakeIndicios
	reportes    *fakeReportes
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	env := &testEnv{
		jwt:         middleware.NewJWT("secreto-de-prueba", time.Hour),
		usuarios:    &fakeUsuarios{user: &models.Usuario{ID: 4, Email: "tecnico.01@mp.gt", Rol: models.RolTecnico, Nombre: "Isaac Sarceño"}},
		expedientes: &fakeExpedientes{},
		indicios:    &fakeIndicios{},
		reportes:    &fakeReportes{},
	}

	auth := NewAuthHandler(services.NewAuthService(env.usuarios, env.jwt, log), log)
	exp := NewExpedienteHandler(services.NewExpedienteService(env.expedientes, log), log)
	ind := NewIndicioHandler(services.NewIndicioService(env.indicios, log), log)
	rep := NewReporteHandler(services.NewReporteService(env.reportes, log), log)
	cat := NewCatalogoHandler(services.NewCatalogoService(env.reportes, log), log)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(log)})
	app.Post("/login", auth.Login)
	app.Get("/catalogos", cat.TiposExpediente)

	private := app.Group("/api", env.jwt.Middleware())
	private.Get("/me", auth.Me)
	private.Post("/expedientes", exp.Create)
	private.Get("/expedientes", exp.List)
	private.Get("/expedientes/:id", exp.Get)
	private.Put("/expedientes/:id/review", exp.Review)
	private.Delete("/expedientes/:id", exp.Delete)
	private.Post("/indicios", ind.Create)
	private.Get("/indicios/:expedienteId", ind.List)
	private.Get("/reports", rep.Get)
	app.Use(NotFound)

	env.app = app
	return env
}

func (e *testEnv) token(t *testing.T, id int, rol string) string {
	t.Helper()
	token, err := e.jwt.Generate(&models.Usuario{ID: id, Email: "u@mp.gt", Rol: rol})
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(t *testing.T, method, path, token, body string) (int, map[string]any, []byte) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var obj map[string]any
	_ = json.Unmarshal(raw, &obj)
	return resp.StatusCode, obj, raw
}

func TestLoginHandler(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodPost, "/login", "", `{"email":"tecnico.01@mp.gt","password":"DicriPass#2025"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, body["token"])
	assert.Equal(t, map[string]any{"id": float64(4), "nombre": "Isaac Sarceño", "rol": "Tecnico"}, body["user"])

	status, body, _ = env.do(t, http.MethodPost, "/login", "", `{"email":"tecnico.01@mp.gt"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "El email y la contraseña son requeridos.", body["details"])
}

func TestLoginInvalidCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.usuarios.user = nil

	status, body, _ := env.do(t, http.MethodPost, "/login", "", `{"email":"x@mp.gt","password":"mala"}`)

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, map[string]any{"error": "No Autorizado", "details": "Credenciales inválidas."}, body)
}

func TestMeHandler(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/api/me", env.token(t, 8, models.RolCoordinador), "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"id": float64(8), "email": "u@mp.gt", "rol": "Coordinador"}, body)
}

func TestCreateExpedienteHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 4, models.RolTecnico)
	env.expedientes.row = database.Row{"ExpedienteID": int32(21)}

	status, body, _ := env.do(t, http.MethodPost, "/api/expedientes", token,
		`{"datosGenerales":"{\"codigo\":\"EXP-21\"}","tipoExpedienteId":"2"}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, map[string]any{"expedienteId": float64(21), "message": "Expediente registrado con éxito."}, body)
	assert.Equal(t, 4, env.expedientes.insertTec)
}

func TestCreateExpedienteHandlerValidation(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 4, models.RolTecnico)

	cases := []struct {
		name    string
		body    string
		details string
	}{
		{"sin datos", `{"tipoExpedienteId":2}`, "El campo datosGenerales es requerido."},
		{"datos null", `{"datosGenerales":null,"tipoExpedienteId":2}`, "El campo datosGenerales es requerido."},
		{"sin tipo", `{"datosGenerales":{"codigo":"X"}}`, "El campo tipoExpedienteId es requerido."},
		{"tipo cero", `{"datosGenerales":{"codigo":"X"},"tipoExpedienteId":0}`, "El campo tipoExpedienteId es requerido."},
		{"técnico negativo", `{"datosGenerales":{"codigo":"X"},"tipoExpedienteId":2,"tecnicoId":-1}`, "El ID del técnico es inválido"},
		{"cuerpo roto", `{"datosGenerales":`, detalleJSONInvalido},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body, _ := env.do(t, http.MethodPost, "/api/expedientes", token, tc.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
			assert.Equal(t, "Validación fallida", body["error"])
			assert.Equal(t, tc.details, body["details"])
		})
	}
}

func TestCreateExpedienteHandlerErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		row     database.Row
		status  int
		details string
	}{
		{"técnico inexistente", raised("El técnico no existe"), nil, fiber.StatusNotFound, "El técnico con ID 9 no existe en la base de datos"},
		{"tipo inactivo", raised("El tipo de expediente no está activo"), nil, fiber.StatusNotFound, "El tipo de expediente con ID 2 no existe o no está activo"},
		{"regla de negocio", raised("Datos incompletos"), nil, fiber.StatusBadRequest, "Datos incompletos"},
		{"sin ID", nil, database.Row{}, fiber.StatusInternalServerError, "No se pudo obtener el ID del expediente creado."},
		{"base caída", errors.New("dial tcp: connection refused"), nil, fiber.StatusInternalServerError, models.DetalleInterno},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			token := env.token(t, 4, models.RolTecnico)
			env.expedientes.err = tc.err
			env.expedientes.row = tc.row

			status, body, _ := env.do(t, http.MethodPost, "/api/expedientes", token,
				`{"datosGenerales":{"codigo":"X"},"tipoExpedienteId":2,"tecnicoId":9}`)

			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.details, body["details"])
		})
	}
}

func TestListExpedientesHandler(t *testing.T) {
	env := newTestEnv(t)
	env.expedientes.rows = []database.Row{{
		"ExpedienteID":   int32(7),
		"DatosGenerales": `"{\"codigo\":\"EXP-7\"}"`,
		"Estado":         models.EstadoBorrador,
		"TecnicoNombre":  "Isaac Sarceño",
	}}

	status, _, raw := env.do(t, http.MethodGet, "/api/expedientes?estado=BORRADOR", env.token(t, 4, models.RolTecnico), "")

	require.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, models.EstadoBorrador, env.expedientes.estado)
	assert.JSONEq(t, `[{
		"id": 7,
		"expedienteId": 7,
		"codigo": "EXP-7",
		"datosGenerales": {"codigo": "EXP-7"},
		"estado": "BORRADOR",
		"tecnicoNombre": "Isaac Sarceño"
	}]`, string(raw))
}

func TestListExpedientesHandlerEmpty(t *testing.T) {
	env := newTestEnv(t)

	status, _, raw := env.do(t, http.MethodGet, "/api/expedientes", env.token(t, 4, models.RolTecnico), "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[]`, string(raw))
}

func TestGetExpedienteHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 4, models.RolTecnico)

	status, body, _ := env.do(t, http.MethodGet, "/api/expedientes/abc", token, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "El ID del expediente debe ser un número válido.", body["details"])

	status, body, _ = env.do(t, http.MethodGet, "/api/expedientes/99", token, "")
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "El expediente ID 99 no existe o tiene un técnico inválido. Verifique la integridad de los datos.", body["details"])

	env.expedientes.row = database.Row{"ExpedienteID": int32(99), "TecnicoNombre": "Ana"}
	status, body, _ = env.do(t, http.MethodGet, "/api/expedientes/99", token, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, float64(99), body["expedienteId"])
}

func TestReviewHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 8, models.RolCoordinador)

	status, body, _ := env.do(t, http.MethodPut, "/api/expedientes/5/review", token, `{"status":"APROBADO"}`)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, map[string]any{"expedienteId": float64(5), "status": "APROBADO", "message": "Expediente revisado exitosamente."}, body)

	status, body, _ = env.do(t, http.MethodPut, "/api/expedientes/5/review", token, `{"status":"RECHAZADO"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "La justificación es obligatoria para el rechazo.", body["details"])

	status, _, _ = env.do(t, http.MethodPut, "/api/expedientes/5/review", token, `{"status":"BORRADOR"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)

	env.expedientes.err = raised("El expediente no existe")
	status, body, _ = env.do(t, http.MethodPut, "/api/expedientes/5/review", token, `{"status":"RECHAZADO","justificacion":"Sin fotos"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "El expediente ID 5 no existe.", body["details"])
}

func TestReviewHandlerValidatesBodyBeforeID(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 8, models.RolCoordinador)

	status, body, _ := env.do(t, http.MethodPut, "/api/expedientes/abc/review", token, `{"status":"BORRADOR"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, `El campo status debe ser "APROBADO" o "RECHAZADO".`, body["details"])

	status, body, _ = env.do(t, http.MethodPut, "/api/expedientes/abc/review", token, `{"status":"RECHAZADO"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "La justificación es obligatoria para el rechazo.", body["details"])

	status, body, _ = env.do(t, http.MethodPut, "/api/expedientes/abc/review", token, `{"status":"APROBADO"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, detalleIDInvalido, body["details"])
}

func TestDeleteHandler(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"ok", nil, fiber.StatusOK, ""},
		{"sin permisos", raised("No tiene permisos para eliminar"), fiber.StatusForbidden, "Acceso Denegado"},
		{"inexistente", raised("El expediente no existe"), fiber.StatusNotFound, "Recurso no encontrado"},
		{"no es borrador", raised("Solo expedientes en BORRADOR"), fiber.StatusBadRequest, "Validación fallida"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.expedientes.err = tc.err

			status, body, _ := env.do(t, http.MethodDelete, "/api/expedientes/3", env.token(t, 4, models.RolTecnico), "")

			assert.Equal(t, tc.status, status)
			if tc.err == nil {
				assert.Equal(t, "Expediente eliminado exitosamente.", body["message"])
				return
			}
			assert.Equal(t, tc.title, body["error"])
		})
	}
}

func TestCreateIndicioHandler(t *testing.T) {
	env := newTestEnv(t)
	env.indicios.row = database.Row{"IndicioID": int32(31)}

	status, body, _ := env.do(t, http.MethodPost, "/api/indicios", env.token(t, 4, models.RolTecnico),
		`{"expedienteId":"5","descripcion":"Casquillo","peso":12.5,"ubicacion":"Bodega 2"}`)

	assert.Equal(t, fiber.StatusCreated, status)
	assert.Equal(t, map[string]any{"indicioId": float64(31), "message": "Indicio registrado con éxito."}, body)
	assert.Equal(t, models.NuevoIndicio{
		ExpedienteID: 5,
		Descripcion:  "Casquillo",
		Peso:         "12.5",
		Ubicacion:    "Bodega 2",
		TecnicoID:    4,
	}, env.indicios.inserted)
}

func TestCreateIndicioHandlerErrors(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 4, models.RolTecnico)

	status, body, _ := env.do(t, http.MethodPost, "/api/indicios", token, `{"expedienteId":5,"descripcion":"x"}`)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "Los campos obligatorios son: expedienteId, descripcion, ubicacion.", body["details"])

	env.indicios.err = raised("El expediente 5 no existe")
	status, body, _ = env.do(t, http.MethodPost, "/api/indicios", token, `{"expedienteId":5,"descripcion":"x","ubicacion":"y"}`)
	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "El expediente 5 no existe", body["details"])
}

func TestListIndiciosHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 4, models.RolTecnico)
	env.indicios.rows = []database.Row{{"IndicioID": int32(1), "Descripcion": "Huella", "Peso": float64(2), "Ubicacion": "B1"}}

	status, body, _ := env.do(t, http.MethodGet, "/api/indicios/x", token, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "El expedienteId debe ser un número válido.", body["details"])

	status, _, raw := env.do(t, http.MethodGet, "/api/indicios/5", token, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"id":1,"descripcion":"Huella","color":"","tamano":"","peso":"2kg","ubicacion":"B1"}]`, string(raw))
}

func TestReportHandler(t *testing.T) {
	env := newTestEnv(t)
	token := env.token(t, 8, models.RolCoordinador)
	env.reportes.rows = []database.Row{{"ExpedienteID": int32(7), "Estado": "APROBADO"}}

	status, body, _ := env.do(t, http.MethodGet, "/api/reports?start_date=01-01-2025", token, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "El formato de start_date debe ser YYYY-MM-DD.", body["details"])

	status, body, _ = env.do(t, http.MethodGet, "/api/reports?end_date=2025-13-45", token, "")
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "El formato de end_date debe ser YYYY-MM-DD.", body["details"])

	status, _, raw := env.do(t, http.MethodGet, "/api/reports?start_date=2025-01-01&status=APROBADO", token, "")
	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"expedienteId":7,"estado":"APROBADO"}]`, string(raw))
	require.NotNil(t, env.reportes.filtro.StartDate)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *env.reportes.filtro.StartDate)
	assert.Nil(t, env.reportes.filtro.EndDate)
	assert.Equal(t, "APROBADO", env.reportes.filtro.Estado)
}

func TestCatalogoHandlerIsPublic(t *testing.T) {
	env := newTestEnv(t)
	env.reportes.rows = []database.Row{{"TipoExpedienteID": int32(1), "Nombre": "Homicidio"}}

	status, _, raw := env.do(t, http.MethodGet, "/catalogos", "", "")

	assert.Equal(t, fiber.StatusOK, status)
	assert.JSONEq(t, `[{"tipoExpedienteId":1,"nombre":"Homicidio"}]`, string(raw))
}

func TestPrivateRoutesRequireToken(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/api/expedientes", "", "")

	assert.Equal(t, fiber.StatusUnauthorized, status)
	assert.Equal(t, "Token de autenticación inválido o ausente.", body["details"])
}

func TestNotFoundHandler(t *testing.T) {
	env := newTestEnv(t)

	status, body, _ := env.do(t, http.MethodGet, "/no-existe", "", "")

	assert.Equal(t, fiber.StatusNotFound, status)
	assert.Equal(t, "/no-existe", body["path"])
	assert.Equal(t, "GET", body["method"])
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Get("/panic", func(c *fiber.Ctx) error { return errors.New("boom") })
	app.Get("/grande", func(c *fiber.Ctx) error { return fiber.ErrRequestEntityTooLarge })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Error Interno del Servidor","details":"Consulte los logs del servidor para detalles."}`, string(raw))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/grande", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestHealthHandler(t *testing.T) {
	log := zap.NewNop()
	app := fiber.New()
	app.Get("/up", NewHealthHandler(fakePinger{}, "1.2.3", log).Health)
	app.Get("/down", NewHealthHandler(fakePinger{err: errors.New("timeout")}, "1.2.3", log).Health)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/up", nil))
	require.NoError(t, err)
	raw, _ := io.ReadAll(resp.Body)
	assert.JSONEq(t, `{"status":"ok","service":"DICRI Evidence API","version":"1.2.3","database":"up"}`, string(raw))

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/down", nil))
	require.NoError(t, err)
	raw, _ = io.ReadAll(resp.Body)
	assert.Contains(t, string(raw), `"database":"down"`)
}
