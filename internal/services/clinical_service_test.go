package services

import (
	"context"
	"errors"
	"testing"

	"neuroclinic-server/internal/assessment"
	"neuroclinic-server/internal/models"
	"neuroclinic-server/internal/triage"
)

func TestTriageRecord_UpsertsLatest(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	nurse := actorOf(f.nurse)

	first, err := f.svc.Triage.Record(ctx, nurse, TriageInput{
		CaseID: f.openCase.ID,
		Vitals: triage.Vitals{WeightKg: 70, HeightCm: 175, Temperature: 36.8, Systolic: 120, Diastolic: 80, HeartRate: 72, OxygenSaturation: 98},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Priority != triage.PriorityLow || first.BMI != 22.9 {
		t.Errorf("unexpected derived fields: priority %s bmi %v", first.Priority, first.BMI)
	}

	second, err := f.svc.Triage.Record(ctx, nurse, TriageInput{
		CaseID: f.openCase.ID,
		Vitals: triage.Vitals{Systolic: 130, Diastolic: 85, HeartRate: 88, OxygenSaturation: 88},
		Notes:  "  disnea  ",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.ID != first.ID {
		t.Error("expected the existing record to be updated")
	}
	if second.Priority != triage.PriorityHigh || second.Notes != "disnea" {
		t.Errorf("unexpected record: %+v", second)
	}

	history, err := f.svc.Triage.History(ctx, actorOf(f.patient), f.openCase.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(history) != 1 {
		t.Errorf("expected a single triage row, got %d", len(history))
	}
}

func TestTriageRecord_LogsRaisedPriority(t *testing.T) {
	f := newFixture(t)
	logs := f.observe()
	ctx := context.Background()
	nurse := actorOf(f.nurse)

	record := func(v triage.Vitals) {
		t.Helper()
		if _, err := f.svc.Triage.Record(ctx, nurse, TriageInput{CaseID: f.openCase.ID, Vitals: v}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	record(triage.Vitals{OxygenSaturation: 98})
	if logs.Len() != 0 {
		t.Fatalf("a low priority reading is not logged, got %d entries", logs.Len())
	}
	record(triage.Vitals{OxygenSaturation: 94})
	record(triage.Vitals{OxygenSaturation: 88})
	record(triage.Vitals{OxygenSaturation: 89})

	raised := logs.FilterMessage("triage priority raised").All()
	if len(raised) != 2 {
		t.Fatalf("expected 2 escalations, got %d", len(raised))
	}
	last := raised[1].ContextMap()
	if last["from"] != "medium" || last["to"] != "high" || last["case_id"] != f.openCase.ID {
		t.Errorf("unexpected fields: %v", last)
	}
}

func TestTriageRecord_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Triage.Record(ctx, actorOf(f.patient), TriageInput{CaseID: f.openCase.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("patients cannot triage, got %v", err)
	}
	_, err := f.svc.Triage.Record(ctx, actorOf(f.nurse), TriageInput{
		CaseID: f.openCase.ID,
		Vitals: triage.Vitals{Systolic: 80, Diastolic: 120},
	})
	if !isValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Triage.Record(ctx, actorOf(f.nurse), TriageInput{CaseID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestHistorySave_SplitsLists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	h, err := f.svc.Histories.Save(ctx, actorOf(f.nurse), HistoryInput{
		PatientID:         f.patient.ID,
		BloodType:         "o+",
		Allergies:         "penicilina, , látex ",
		ChronicConditions: "",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.BloodType != "O+" {
		t.Errorf("expected normalised blood type, got %q", h.BloodType)
	}
	if len(h.Allergies) != 2 || h.Allergies[0] != "penicilina" || h.Allergies[1] != "látex" {
		t.Errorf("unexpected allergies: %v", h.Allergies)
	}
	if h.ChronicConditions == nil || len(h.ChronicConditions) != 0 {
		t.Errorf("empty input should give an empty list, got %v", h.ChronicConditions)
	}

	again, err := f.svc.Histories.Save(ctx, actorOf(f.doctor), HistoryInput{PatientID: f.patient.ID, Allergies: "aspirina"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != h.ID {
		t.Error("a patient has a single history row")
	}

	got, err := f.svc.Histories.Get(ctx, actorOf(f.patient), f.patient.ID)
	if err != nil || len(got.Allergies) != 1 {
		t.Errorf("unexpected history %+v, %v", got, err)
	}

	if _, err := f.svc.Histories.Save(ctx, actorOf(f.nurse), HistoryInput{PatientID: f.patient.ID, BloodType: "C+"}); !isValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Histories.Get(ctx, Actor{UserID: "other", Role: models.RolePatient}, f.patient.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestAssessmentSubmit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := actorOf(f.doctor)

	scored, err := f.svc.Assessments.Submit(ctx, doctor, AssessmentInput{
		CaseID:    f.openCase.ID,
		HasChorea: true,
		Items: assessment.Sheet{
			assessment.TFC:        {"occupation": 2, "finances": 2, "chores": 1, "adl": 3, "care_level": 2},
			assessment.UHDRSMotor: {"chorea_face": 3, "gait": 2},
		},
		Diagnosis: "Enfermedad de Huntington",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	a := scored.Assessment
	if a.TFCScore == nil || *a.TFCScore != 10 || a.TFCStage != "II" {
		t.Errorf("unexpected TFC: %v %s", a.TFCScore, a.TFCStage)
	}
	if a.UHDRSMotorScore == nil || *a.UHDRSMotorScore != 5 {
		t.Errorf("unexpected motor score: %v", a.UHDRSMotorScore)
	}
	if a.MMSEScore != nil {
		t.Error("unscored instruments stay nil")
	}
	if !scored.Results[assessment.TFC].Complete {
		t.Error("all TFC items were answered")
	}

	latest, err := f.svc.Assessments.Latest(ctx, actorOf(f.patient), f.openCase.ID)
	if err != nil || latest.ID != a.ID {
		t.Errorf("unexpected latest %+v, %v", latest, err)
	}
}

func TestAssessmentSubmit_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	doctor := actorOf(f.doctor)

	tests := []struct {
		name string
		in   AssessmentInput
	}{
		{"empty", AssessmentInput{CaseID: f.openCase.ID}},
		{"out of range", AssessmentInput{CaseID: f.openCase.ID, Items: assessment.Sheet{assessment.MMSE: {"naming": 5}}}},
		{"unknown item", AssessmentInput{CaseID: f.openCase.ID, Items: assessment.Sheet{assessment.PBA: {"sleep": 1}}}},
		{"unknown instrument", AssessmentInput{CaseID: f.openCase.ID, Items: assessment.Sheet{"moca": {}}, Lenient: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.Assessments.Submit(ctx, doctor, tt.in); !isValidation(err) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	scored, err := f.svc.Assessments.Submit(ctx, doctor, AssessmentInput{
		CaseID:  f.openCase.ID,
		Items:   assessment.Sheet{assessment.MMSE: {"naming": 5, "recall": 2}},
		Lenient: true,
	})
	if err != nil {
		t.Fatalf("lenient submit: %v", err)
	}
	if *scored.Assessment.MMSEScore != 4 {
		t.Errorf("expected clamped total 4, got %d", *scored.Assessment.MMSEScore)
	}

	if _, err := f.svc.Assessments.Submit(ctx, actorOf(f.nurse), AssessmentInput{CaseID: f.openCase.ID}); !errors.Is(err, ErrForbidden) {
		t.Errorf("only doctors score assessments, got %v", err)
	}
}

func TestPrescriptionCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Prescriptions.Create(ctx, actorOf(f.doctor), PrescriptionInput{CaseID: f.openCase.ID}); !isValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Prescriptions.Create(ctx, actorOf(f.nurse), PrescriptionInput{
		CaseID: f.openCase.ID,
		Items:  []PrescriptionItemInput{{Medication: "Tetrabenazina"}},
	}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}

	p, err := f.svc.Prescriptions.Create(ctx, actorOf(f.doctor), PrescriptionInput{
		CaseID: f.openCase.ID,
		Items: []PrescriptionItemInput{
			{Medication: "Tetrabenazina", Dose: "12.5 mg", Frequency: "cada 12 h", Duration: "30 días"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.PatientID != f.patient.ID || len(p.Items) != 1 {
		t.Errorf("unexpected prescription: %+v", p)
	}

	mine, err := f.svc.Prescriptions.ListForPatient(ctx, actorOf(f.patient), f.patient.ID)
	if err != nil || len(mine) != 1 {
		t.Errorf("expected 1 prescription, got %d (%v)", len(mine), err)
	}
	if _, err := f.svc.Prescriptions.ListForPatient(ctx, Actor{UserID: "x", Role: models.RolePatient}, f.patient.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestLabCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	lab, err := f.svc.Labs.Create(ctx, actorOf(f.nurse), LabInput{
		CaseID:  f.openCase.ID,
		Type:    "genetic",
		Results: map[string]any{"cag_repeats": 44},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lab.ResultsJSON["cag_repeats"] != 44 {
		t.Errorf("unexpected results: %v", lab.ResultsJSON)
	}
	if _, err := f.svc.Labs.Create(ctx, actorOf(f.nurse), LabInput{CaseID: f.openCase.ID, Type: "mri"}); !isValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.svc.Labs.Create(ctx, actorOf(f.patient), LabInput{CaseID: f.openCase.ID, Type: "mri", ResultText: "ok"}); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}

func TestClosedCaseRejectsEntries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Cases.SetStatus(ctx, actorOf(f.doctor), f.openCase.ID, models.CaseClosed)
	if err != nil {
		t.Fatalf("closing case: %v", err)
	}
	if c.IsActive || c.ClosedAt == nil {
		t.Errorf("closing should deactivate the case: %+v", c)
	}

	_, err = f.svc.Prescriptions.Create(ctx, actorOf(f.doctor), PrescriptionInput{
		CaseID: f.openCase.ID,
		Items:  []PrescriptionItemInput{{Medication: "Tetrabenazina"}},
	})
	if !errors.Is(err, ErrCaseInactive) {
		t.Errorf("expected inactive case, got %v", err)
	}
	if _, err := f.svc.Cases.SaveAnamnesis(ctx, actorOf(f.doctor), f.openCase.ID, AnamnesisInput{CurrentIllness: "x"}); !errors.Is(err, ErrCaseInactive) {
		t.Errorf("expected inactive case, got %v", err)
	}
}

func TestCaseDetail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.book(t, at(10, 9))
	if _, err := f.svc.Cases.SaveAnamnesis(ctx, actorOf(f.doctor), f.openCase.ID, AnamnesisInput{FamilyHistory: "Padre con EH"}); err != nil {
		t.Fatalf("anamnesis: %v", err)
	}

	d, err := f.svc.Cases.Detail(ctx, actorOf(f.doctor), f.openCase.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Patient == nil || d.Patient.ID != f.patient.ID {
		t.Errorf("expected sanitised patient, got %+v", d.Patient)
	}
	if d.Anamnesis == nil || d.Anamnesis.FamilyHistory != "Padre con EH" {
		t.Errorf("unexpected anamnesis: %+v", d.Anamnesis)
	}
	if len(d.Appointments) != 1 || d.LatestTriage != nil || d.MedicalHistory != nil {
		t.Errorf("unexpected detail: %+v", d)
	}

	if _, err := f.svc.Cases.Detail(ctx, Actor{UserID: "x", Role: models.RolePatient}, f.openCase.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("expected forbidden, got %v", err)
	}
}
