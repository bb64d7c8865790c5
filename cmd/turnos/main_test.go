package main

import (
	"bytes"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidasana/turnos/internal/platform/mockapi"
)

func setupEnv(t *testing.T) {
	t.Helper()
	srv, err := mockapi.NewServer(mockapi.Options{
		SigningKey: []byte("cli-test-key"),
		Seed:       true,
	}, zerolog.Nop())
	require.NoError(t, err)
	ts := httptest.NewServer(srv.Echo)
	t.Cleanup(ts.Close)

	t.Setenv("ENV", "test")
	t.Setenv("LOG_LEVEL", "disabled")
	t.Setenv("API_BASE_URL", ts.URL)
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_DIR", t.TempDir())
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_PatientBooksProfessionalConfirms(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "login", "--email", "juan.perez@vidasana.test", "--password", mockapi.DefaultPassword, "--role", "paciente")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] Inicio de sesión exitoso: Bienvenido paciente")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Juan Pérez (paciente)")

	out, err = run(t, "professionals")
	require.NoError(t, err)
	assert.Contains(t, out, "Dra. María González")

	tomorrow := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	out, err = run(t, "book", "--professional", "prof-1", "--date", tomorrow, "--time", "15:45", "--reason", "Dolor de cabeza")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] Turno reservado: Turno solicitado para")
	assert.Contains(t, out, "a las 15:45")
	var bookedID string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "turno ") {
			bookedID = strings.TrimPrefix(line, "turno ")
		}
	}
	require.NotEmpty(t, bookedID)

	out, err = run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Bienvenido, Juan Pérez")
	assert.Contains(t, out, "Dolor de cabeza")
	assert.Contains(t, out, "Historia clínica")

	_, err = run(t, "logout")
	require.NoError(t, err)
	_, err = run(t, "dashboard")
	assert.Error(t, err)

	_, err = run(t, "login", "--email", "maria.gonzalez@vidasana.test", "--password", mockapi.DefaultPassword, "--role", "profesional")
	require.NoError(t, err)

	out, err = run(t, "dashboard")
	require.NoError(t, err)
	assert.Contains(t, out, "Pacientes: 3")
	assert.Contains(t, out, "Juan Pérez")
	assert.Contains(t, out, "Carlos Rodríguez")

	out, err = run(t, "confirm", bookedID)
	require.NoError(t, err)
	assert.Contains(t, out, "[+] Turno confirmado")

	out, err = run(t, "cancel", bookedID)
	assert.Error(t, err)
	assert.Contains(t, out, "[!] Error")
}

func TestCLI_LoginFailures(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "login", "--email", "juan.perez@vidasana.test", "--password", "wrong")
	assert.Error(t, err)
	assert.Contains(t, out, "[!] Error de autenticación: Credenciales incorrectas")

	out, err = run(t, "login", "--email", "", "--password", "")
	assert.Error(t, err)
	assert.Contains(t, out, "Por favor complete todos los campos")

	_, err = run(t, "whoami")
	assert.Error(t, err)
}

func TestCLI_Register(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "register", "--role", "patient", "--nombre", "Lucía", "--apellido", "Martínez",
		"--dni", "30999888", "--email", "lucia@vidasana.test", "--password", "clave")
	require.NoError(t, err)
	assert.Contains(t, out, "[+] Registro exitoso")

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Lucía Martínez (paciente)")

	out, err = run(t, "register", "--role", "professional", "--nombre", "Solo")
	assert.Error(t, err)
	assert.Contains(t, out, "Por favor complete todos los campos")
}

func TestCLI_BookValidation(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "login", "--email", "ana.garcia@vidasana.test", "--password", mockapi.DefaultPassword)
	require.NoError(t, err)

	out, err := run(t, "book", "--reason", "Control")
	assert.Error(t, err)
	assert.Contains(t, out, "Por favor complete todos los campos")

	out, err = run(t, "book", "--professional", "prof-1", "--date", "2001-01-01", "--time", "10:00", "--reason", "Control")
	assert.Error(t, err)
	assert.Contains(t, out, "[!] Error")
}

func TestCLI_RequiresBaseURL(t *testing.T) {
	t.Setenv("API_BASE_URL", "")
	t.Setenv("SESSION_DIR", t.TempDir())
	_, err := run(t, "whoami")
	assert.Error(t, err)
}

func TestCLI_BookRejectsMalformedDate(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "login", "--email", "ana.garcia@vidasana.test", "--password", mockapi.DefaultPassword)
	require.NoError(t, err)
	_, err = run(t, "book", "--date", "01/02/2030")
	assert.Error(t, err)
}
