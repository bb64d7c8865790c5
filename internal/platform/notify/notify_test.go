package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestConsole_FormatsByLevel(t *testing.T) {
	var out bytes.Buffer
	c := NewConsole(&out, zerolog.Nop())

	c.Notify(Success("Turno reservado", "Turno solicitado para 01/06/2025 a las 14:30"))
	c.Notify(Error("Error", "Por favor complete todos los campos"))
	c.Notify(Info("Sin turnos", ""))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out.String())
	}
	if lines[0] != "[+] Turno reservado: Turno solicitado para 01/06/2025 a las 14:30" {
		t.Errorf("unexpected success line: %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "[!] Error") {
		t.Errorf("unexpected error line: %q", lines[1])
	}
	if lines[2] != "[*] Sin turnos" {
		t.Errorf("unexpected info line: %q", lines[2])
	}
}

func TestRecorder_KeepsOrder(t *testing.T) {
	r := NewRecorder()
	if _, ok := r.Last(); ok {
		t.Fatal("expected no notification on empty recorder")
	}

	r.Notify(Info("a", ""))
	r.Notify(Error("b", ""))

	all := r.All()
	if len(all) != 2 || all[0].Title != "a" || all[1].Title != "b" {
		t.Errorf("unexpected notifications: %+v", all)
	}
	last, ok := r.Last()
	if !ok || last.Level != LevelError {
		t.Errorf("expected last to be error, got %+v", last)
	}
}
