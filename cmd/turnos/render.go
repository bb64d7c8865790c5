package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/lo"

	"github.com/vidasana/turnos/internal/domain/identity"
	"github.com/vidasana/turnos/internal/domain/turno"
)

func roleLabel(r identity.Role) string {
	if r == identity.RoleProfessional {
		return "profesional"
	}
	return "paciente"
}

func renderIdentity(out io.Writer, ident identity.Identity) {
	fmt.Fprintf(out, "%s (%s)\n", ident.DisplayName(), roleLabel(ident.Role))
	fmt.Fprintf(out, "id: %s\n", ident.ID)
	switch {
	case ident.Patient != nil:
		fmt.Fprintf(out, "dni: %s\n", ident.Patient.DNI)
		if ident.Patient.AssignedProfessional != "" {
			fmt.Fprintf(out, "profesional asignado: %s\n", ident.Patient.AssignedProfessional)
		}
	case ident.Professional != nil:
		fmt.Fprintf(out, "especialidad: %s\n", ident.Professional.Specialty)
	}
}

func renderProfessionals(out io.Writer, list []identity.Professional) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNOMBRE\tESPECIALIDAD")
	for _, p := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", p.ID, p.FullName(), p.Specialty)
	}
	tw.Flush()
}

func renderDashboard(out io.Writer, d *turno.Dashboard, now time.Time) {
	ident := d.Identity()
	view := d.View(now)

	fmt.Fprintf(out, "Bienvenido, %s\n\n", ident.DisplayName())
	if ident.IsProfessional() {
		fmt.Fprintf(out, "Turnos hoy: %d   Pendientes: %d   Pacientes: %d\n\n",
			view.TodayCount, view.PendingCount, d.TotalPatients())
	} else {
		fmt.Fprintf(out, "Turnos hoy: %d   Pendientes: %d\n\n", view.TodayCount, view.PendingCount)
	}

	counterparty := "PROFESIONAL"
	if ident.IsProfessional() {
		counterparty = "PACIENTE"
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tFECHA\t%s\tMOTIVO\tESTADO\tACCIONES\n", counterparty)
	for _, r := range view.Rows {
		actions := lo.Map(r.Actions, func(s turno.Status, _ int) string { return actionLabel(s) })
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Fecha.Format(turno.DisplayLayout), r.Counterparty, r.Reason, r.Status, strings.Join(actions, ","))
	}
	tw.Flush()
	if len(view.Rows) == 0 {
		fmt.Fprintln(out, "No hay turnos")
	}

	if history := d.ClinicalHistory(); len(history) > 0 {
		fmt.Fprintln(out, "\nHistoria clínica")
		tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "FECHA\tDIAGNÓSTICO\tTRATAMIENTO")
		for _, h := range history {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", h.Date, h.Diagnosis, h.Treatment)
		}
		tw.Flush()
	}
}

func actionLabel(s turno.Status) string {
	switch s {
	case turno.StatusConfirmed:
		return "confirm"
	case turno.StatusCancelled:
		return "cancel"
	}
	return string(s)
}
