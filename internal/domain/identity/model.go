package identity

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Role distinguishes the two kinds of users.
type Role string

const (
	RolePatient      Role = "patient"
	RoleProfessional Role = "professional"
)

// ParseRole accepts the wire value or its Spanish alias.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "patient", "paciente":
		return RolePatient, nil
	case "professional", "profesional":
		return RoleProfessional, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

var (
	ErrInvalidRole = errors.New("invalid role")
	ErrNoSession   = errors.New("no active session")
)

// ClinicalRecord is one entry of a patient's historia clinica.
type ClinicalRecord struct {
	Date      string `json:"fecha"`
	Diagnosis string `json:"diagnostico"`
	Treatment string `json:"tratamiento,omitempty"`
}

// Contact holds optional contact data some backends attach to a patient.
type Contact struct {
	Email string `json:"email,omitempty"`
	Phone string `json:"telefono,omitempty"`
}

// Patient maps to the paciente resource.
type Patient struct {
	ID                   string           `json:"_id,omitempty"`
	FirstName            string           `json:"nombre"`
	LastName             string           `json:"apellido"`
	DNI                  string           `json:"dni"`
	Email                string           `json:"email,omitempty"`
	BirthDate            string           `json:"fecha_nacimiento,omitempty"`
	Contact              *Contact         `json:"contacto,omitempty"`
	ClinicalHistory      []ClinicalRecord `json:"historia_clinica,omitempty"`
	AssignedProfessional string           `json:"profesional_asignado,omitempty"`
}

func (p *Patient) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Professional maps to the profesional resource.
type Professional struct {
	ID         string   `json:"_id,omitempty"`
	FirstName  string   `json:"nombre"`
	LastName   string   `json:"apellido"`
	Specialty  string   `json:"especialidad"`
	Email      string   `json:"email"`
	PatientIDs []string `json:"pacientes_ids,omitempty"`
	Active     bool     `json:"activo"`
}

func (p *Professional) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// Identity is the authenticated user. Exactly one of Patient or Professional
// is set, matching Role.
type Identity struct {
	ID           string
	Role         Role
	Patient      *Patient
	Professional *Professional
	// Token is the access token issued at login, sent as a bearer credential.
	Token string
}

// NewPatientIdentity wraps a patient record.
func NewPatientIdentity(p Patient, token string) Identity {
	return Identity{ID: p.ID, Role: RolePatient, Patient: &p, Token: token}
}

// NewProfessionalIdentity wraps a professional record.
func NewProfessionalIdentity(p Professional, token string) Identity {
	return Identity{ID: p.ID, Role: RoleProfessional, Professional: &p, Token: token}
}

func (i Identity) IsPatient() bool      { return i.Role == RolePatient }
func (i Identity) IsProfessional() bool { return i.Role == RoleProfessional }

// DisplayName returns the user's full name, or the id when no data is attached.
func (i Identity) DisplayName() string {
	switch {
	case i.Patient != nil:
		return i.Patient.FullName()
	case i.Professional != nil:
		return i.Professional.FullName()
	}
	return i.ID
}

func (i Identity) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("identity id is required")
	}
	switch i.Role {
	case RolePatient:
		if i.Patient == nil {
			return fmt.Errorf("patient data is required")
		}
	case RoleProfessional:
		if i.Professional == nil {
			return fmt.Errorf("professional data is required")
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, i.Role)
	}
	return nil
}

type identityJSON struct {
	ID    string          `json:"id"`
	Role  Role            `json:"role"`
	Data  json.RawMessage `json:"data"`
	Token string          `json:"token,omitempty"`
}

func (i Identity) MarshalJSON() ([]byte, error) {
	var data any
	switch i.Role {
	case RolePatient:
		data = i.Patient
	case RoleProfessional:
		data = i.Professional
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, i.Role)
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(identityJSON{ID: i.ID, Role: i.Role, Data: raw, Token: i.Token})
}

// UnmarshalJSON picks the concrete data type from the role field.
func (i *Identity) UnmarshalJSON(b []byte) error {
	var w identityJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	out := Identity{ID: w.ID, Role: w.Role, Token: w.Token}
	switch w.Role {
	case RolePatient:
		out.Patient = &Patient{}
		if len(w.Data) > 0 && string(w.Data) != "null" {
			if err := json.Unmarshal(w.Data, out.Patient); err != nil {
				return fmt.Errorf("decode patient data: %w", err)
			}
		}
	case RoleProfessional:
		out.Professional = &Professional{}
		if len(w.Data) > 0 && string(w.Data) != "null" {
			if err := json.Unmarshal(w.Data, out.Professional); err != nil {
				return fmt.Errorf("decode professional data: %w", err)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, w.Role)
	}
	if out.ID == "" {
		if out.Patient != nil {
			out.ID = out.Patient.ID
		} else {
			out.ID = out.Professional.ID
		}
	}
	*i = out
	return nil
}
