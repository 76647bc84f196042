package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Aneli0/atelie.works/internal/catalog"
	"github.com/Aneli0/atelie.works/internal/pricing"
)

type studioViewData struct {
	baseViewData
	Studio   catalog.StudioSettings
	PixTypes []string
}

type laborViewData struct {
	baseViewData
	Labor catalog.LaborSettings
}

var pixTypes = []string{"CPF", "CNPJ", "E-mail", "Telefone", "Aleatória"}

func (s *server) handleStudioSettingsForm(w http.ResponseWriter, r *http.Request) {
	studio, err := s.getStudioSettings()
	if err != nil {
		http.Error(w, "failed to load studio settings", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "settings_studio.html", studioViewData{Studio: studio, PixTypes: pixTypes})
}

func (s *server) handleStudioSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	studio, validationErr := parseStudioSettingsForm(r)
	if validationErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderTemplate(w, "settings_studio.html", studioViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Studio:       studio,
			PixTypes:     pixTypes,
		})
		return
	}

	if err := s.updateStudioSettings(studio); err != nil {
		http.Error(w, "failed to save studio settings", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "settings_studio.html", studioViewData{
		baseViewData: baseViewData{SuccessMessage: "Dados do ateliê salvos com sucesso."},
		Studio:       studio,
		PixTypes:     pixTypes,
	})
}

func (s *server) handleLaborSettingsForm(w http.ResponseWriter, r *http.Request) {
	labor, err := s.getLaborSettings()
	if err != nil {
		http.Error(w, "failed to load labor settings", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "settings_labor.html", laborViewData{Labor: labor})
}

func (s *server) handleLaborSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	labor, validationErr := parseLaborSettingsForm(r)
	if validationErr != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.renderTemplate(w, "settings_labor.html", laborViewData{
			baseViewData: baseViewData{ErrorMessage: validationErr.Error()},
			Labor:        labor,
		})
		return
	}

	if err := s.updateLaborSettings(labor); err != nil {
		http.Error(w, "failed to save labor settings", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "settings_labor.html", laborViewData{
		baseViewData: baseViewData{SuccessMessage: "Configuração salva com sucesso."},
		Labor:        labor,
	})
}

func parseStudioSettingsForm(r *http.Request) (catalog.StudioSettings, error) {
	studio := catalog.StudioSettings{
		Name:     strings.TrimSpace(r.FormValue("nome")),
		Whatsapp: strings.TrimSpace(r.FormValue("whatsapp")),
		PixType:  r.FormValue("tipo_pix"),
		PixKey:   strings.TrimSpace(r.FormValue("chave_pix")),
		Notes:    strings.TrimSpace(r.FormValue("observacoes")),
		Logo:     strings.TrimSpace(r.FormValue("logo")),
	}

	valid := false
	for _, t := range pixTypes {
		if studio.PixType == t {
			valid = true
			break
		}
	}
	if !valid {
		return studio, fmt.Errorf("tipo_pix deve ser um de: %s", strings.Join(pixTypes, ", "))
	}

	return studio, nil
}

// parseLaborSettingsForm validates the schedule fields and rederives the cost
// per minute; the derived field is never accepted from the form.
func parseLaborSettingsForm(r *http.Request) (catalog.LaborSettings, error) {
	var labor catalog.LaborSettings

	var err error
	if labor.DesiredSalary, err = parseNonNegativeFloat(r.FormValue("salario_desejado"), "salario_desejado"); err != nil {
		return labor, err
	}
	if labor.DaysPerMonth, err = parsePositiveFloat(r.FormValue("dias_por_mes"), "dias_por_mes"); err != nil {
		return labor, err
	}
	if labor.HoursPerDay, err = parsePositiveFloat(r.FormValue("horas_por_dia"), "horas_por_dia"); err != nil {
		return labor, err
	}
	if labor.PrintingCostPerSheet, err = parseNonNegativeFloat(r.FormValue("custo_impressao"), "custo_impressao"); err != nil {
		return labor, err
	}
	if labor.DefaultMargin, err = parseMarginPercent(r.FormValue("margem_padrao"), "margem_padrao"); err != nil {
		return labor, err
	}

	labor.CostPerMinute = pricing.CostPerMinute(labor.DesiredSalary, labor.DaysPerMonth, labor.HoursPerDay)

	return labor, nil
}

func (s *server) getStudioSettings() (catalog.StudioSettings, error) {
	var studio catalog.StudioSettings
	err := s.db.QueryRow(`
		SELECT name, whatsapp, pix_type, pix_key, notes, logo
		FROM studio_settings
		WHERE id = 1
	`).Scan(&studio.Name, &studio.Whatsapp, &studio.PixType, &studio.PixKey, &studio.Notes, &studio.Logo)
	if err != nil {
		return catalog.StudioSettings{}, fmt.Errorf("query studio_settings: %w", err)
	}
	return studio, nil
}

func (s *server) updateStudioSettings(studio catalog.StudioSettings) error {
	_, err := s.db.Exec(`
		UPDATE studio_settings
		SET
			name = ?,
			whatsapp = ?,
			pix_type = ?,
			pix_key = ?,
			notes = ?,
			logo = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`, studio.Name, studio.Whatsapp, studio.PixType, studio.PixKey, studio.Notes, studio.Logo)
	if err != nil {
		return fmt.Errorf("update studio_settings: %w", err)
	}
	return nil
}

func (s *server) getLaborSettings() (catalog.LaborSettings, error) {
	var labor catalog.LaborSettings
	err := s.db.QueryRow(`
		SELECT desired_salary, days_per_month, hours_per_day, cost_per_minute, printing_cost_per_sheet, default_margin
		FROM labor_settings
		WHERE id = 1
	`).Scan(
		&labor.DesiredSalary,
		&labor.DaysPerMonth,
		&labor.HoursPerDay,
		&labor.CostPerMinute,
		&labor.PrintingCostPerSheet,
		&labor.DefaultMargin,
	)
	if err != nil {
		return catalog.LaborSettings{}, fmt.Errorf("query labor_settings: %w", err)
	}
	return labor, nil
}

func (s *server) updateLaborSettings(labor catalog.LaborSettings) error {
	_, err := s.db.Exec(`
		UPDATE labor_settings
		SET
			desired_salary = ?,
			days_per_month = ?,
			hours_per_day = ?,
			cost_per_minute = ?,
			printing_cost_per_sheet = ?,
			default_margin = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = 1
	`,
		labor.DesiredSalary,
		labor.DaysPerMonth,
		labor.HoursPerDay,
		labor.CostPerMinute,
		labor.PrintingCostPerSheet,
		labor.DefaultMargin,
	)
	if err != nil {
		return fmt.Errorf("update labor_settings: %w", err)
	}
	return nil
}
