package identity

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ValidationError lists every missing or invalid field of a form.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

// Credentials is the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}

func (c Credentials) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.Role != RolePatient && c.Role != RoleProfessional {
		missing = append(missing, "role")
	}
	if len(missing) > 0 {
		return &ValidationError{Fields: missing}
	}
	return nil
}

// Draft is a registration request for one of the two roles.
type Draft interface {
	Role() Role
	Email() string
}

// PatientDraft registers a patient.
type PatientDraft struct {
	FirstName string
	LastName  string
	DNI       string
	email     string
	Password  string
}

// NewPatientDraft trims its inputs and reports every missing field.
func NewPatientDraft(firstName, lastName, dni, email, password string) (PatientDraft, error) {
	d := PatientDraft{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		DNI:       strings.TrimSpace(dni),
		email:     strings.TrimSpace(email),
		Password:  password,
	}
	missing := requireFields(
		"nombre", d.FirstName,
		"apellido", d.LastName,
		"dni", d.DNI,
		"email", d.email,
		"password", d.Password,
	)
	if len(missing) > 0 {
		return PatientDraft{}, &ValidationError{Fields: missing}
	}
	return d, nil
}

func (d PatientDraft) Role() Role    { return RolePatient }
func (d PatientDraft) Email() string { return d.email }

func (d PatientDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role     Role   `json:"role"`
		Nombre   string `json:"nombre"`
		Apellido string `json:"apellido"`
		DNI      string `json:"dni"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}{RolePatient, d.FirstName, d.LastName, d.DNI, d.email, d.Password})
}

// ProfessionalDraft registers a professional.
type ProfessionalDraft struct {
	FirstName string
	LastName  string
	Specialty string
	email     string
	Password  string
}

// NewProfessionalDraft trims its inputs and reports every missing field.
func NewProfessionalDraft(firstName, lastName, specialty, email, password string) (ProfessionalDraft, error) {
	d := ProfessionalDraft{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Specialty: strings.TrimSpace(specialty),
		email:     strings.TrimSpace(email),
		Password:  password,
	}
	missing := requireFields(
		"nombre", d.FirstName,
		"apellido", d.LastName,
		"especialidad", d.Specialty,
		"email", d.email,
		"password", d.Password,
	)
	if len(missing) > 0 {
		return ProfessionalDraft{}, &ValidationError{Fields: missing}
	}
	return d, nil
}

func (d ProfessionalDraft) Role() Role    { return RoleProfessional }
func (d ProfessionalDraft) Email() string { return d.email }

func (d ProfessionalDraft) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Role         Role   `json:"role"`
		Nombre       string `json:"nombre"`
		Apellido     string `json:"apellido"`
		Especialidad string `json:"especialidad"`
		Email        string `json:"email"`
		Password     string `json:"password"`
	}{RoleProfessional, d.FirstName, d.LastName, d.Specialty, d.email, d.Password})
}

// requireFields takes name/value pairs and returns the names with empty values.
func requireFields(pairs ...string) []string {
	var missing []string
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] == "" {
			missing = append(missing, pairs[i])
		}
	}
	return missing
}
