package seed

import (
	"github.com/lims/lims/internal/domain/labtest"
	"github.com/lims/lims/internal/domain/patient"
	"github.com/lims/lims/internal/domain/sample"
)

func strPtr(s string) *string { return &s }

// catalog is the reference test menu with per-parameter units and normal
// ranges.
func catalog() []labtest.Test {
	return []labtest.Test{
		{
			Code:        "CBC",
			Name:        "Complete Blood Count",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Hematology",
			Department:  "Laboratory",
			Price:       45.00,
			Duration:    "2-4 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "RBC", Units: "10^6/uL", NormalRange: "4.5-5.9 (M), 4.1-5.1 (F)"},
				{Name: "WBC", Units: "10^3/uL", NormalRange: "4.0-11.0"},
				{Name: "Platelets", Units: "10^3/uL", NormalRange: "150-400"},
				{Name: "Hemoglobin", Units: "g/dL", NormalRange: "13.0-17.0 (M), 12.0-15.0 (F)"},
				{Name: "Hematocrit", Units: "%", NormalRange: "40-52 (M), 36-48 (F)"},
				{Name: "MCV", Units: "fL", NormalRange: "80-100"},
				{Name: "MCH", Units: "pg", NormalRange: "27-33"},
				{Name: "MCHC", Units: "g/dL", NormalRange: "32-36"},
				{Name: "RDW", Units: "%", NormalRange: "11.5-14.5"},
			},
		},
		{
			Code:        "LIP",
			Name:        "Lipid Profile",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Clinical Chemistry",
			Department:  "Laboratory",
			Price:       35.00,
			Duration:    "1-2 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Total Cholesterol", Units: "mg/dL", NormalRange: "<200"},
				{Name: "HDL Cholesterol", Units: "mg/dL", NormalRange: ">40 (M), >50 (F)"},
				{Name: "LDL Cholesterol (Calculated)", Units: "mg/dL", NormalRange: "<100"},
				{Name: "Triglycerides", Units: "mg/dL", NormalRange: "<150"},
				{Name: "VLDL Cholesterol (Calculated)", Units: "mg/dL", NormalRange: "5-40"},
			},
		},
		{
			Code:        "UA",
			Name:        "Urinalysis",
			SampleTypes: []string{sample.TypeUrine},
			Category:    "Clinical Chemistry",
			Department:  "Laboratory",
			Price:       25.00,
			Duration:    "30 minutes - 1 hour",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Color", NormalRange: "Yellow"},
				{Name: "Appearance", NormalRange: "Clear"},
				{Name: "Specific Gravity", NormalRange: "1.005-1.030"},
				{Name: "pH", NormalRange: "4.6-8.0"},
				{Name: "Protein", NormalRange: "Negative"},
				{Name: "Glucose", Units: "mg/dL", NormalRange: "Negative"},
				{Name: "Ketones", NormalRange: "Negative"},
				{Name: "Bilirubin", NormalRange: "Negative"},
				{Name: "Urobilinogen", Units: "EU/dL", NormalRange: "0.1-1.0"},
				{Name: "Nitrite", NormalRange: "Negative"},
				{Name: "Leukocyte Esterase", NormalRange: "Negative"},
			},
		},
		{
			Code:        "LFT",
			Name:        "Liver Function Test",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Clinical Chemistry",
			Department:  "Laboratory",
			Price:       60.00,
			Duration:    "2-4 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Total Protein", Units: "g/dL", NormalRange: "6.0-8.3"},
				{Name: "Albumin", Units: "g/dL", NormalRange: "3.5-5.0"},
				{Name: "Globulin", Units: "g/dL", NormalRange: "2.0-3.5"},
				{Name: "A/G Ratio", Units: "ratio", NormalRange: "1.2-2.2"},
				{Name: "Total Bilirubin", Units: "mg/dL", NormalRange: "0.1-1.2"},
				{Name: "Direct Bilirubin", Units: "mg/dL", NormalRange: "0.0-0.3"},
				{Name: "Indirect Bilirubin", Units: "mg/dL", NormalRange: "0.1-1.0"},
				{Name: "ALT (SGPT)", Units: "U/L", NormalRange: "7-56"},
				{Name: "AST (SGOT)", Units: "U/L", NormalRange: "5-40"},
				{Name: "ALP (Alkaline Phosphatase)", Units: "U/L", NormalRange: "44-147"},
				{Name: "GGT", Units: "U/L", NormalRange: "9-48"},
			},
		},
		{
			Code:        "KFT",
			Name:        "Kidney Function Test (Renal Panel)",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Clinical Chemistry",
			Department:  "Laboratory",
			Price:       55.00,
			Duration:    "2-3 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Urea (BUN)", Units: "mg/dL", NormalRange: "7-20"},
				{Name: "Creatinine", Units: "mg/dL", NormalRange: "0.7-1.3 (M), 0.6-1.1 (F)"},
				{Name: "Uric Acid", Units: "mg/dL", NormalRange: "3.5-7.2 (M), 2.6-6.0 (F)"},
				{Name: "Sodium", Units: "mmol/L", NormalRange: "135-145"},
				{Name: "Potassium", Units: "mmol/L", NormalRange: "3.5-5.1"},
				{Name: "Chloride", Units: "mmol/L", NormalRange: "98-107"},
				{Name: "eGFR (Calculated)", Units: "mL/min/1.73m2", NormalRange: ">60"},
			},
		},
		{
			Code:        "FBS",
			Name:        "Fasting Blood Sugar",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Clinical Chemistry",
			Department:  "Laboratory",
			Price:       15.00,
			Duration:    "1-2 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Glucose", Units: "mg/dL", NormalRange: "70-99 (Fasting)"},
			},
		},
		{
			Code:        "ESR",
			Name:        "Erythrocyte Sedimentation Rate",
			SampleTypes: []string{sample.TypeBlood},
			Category:    "Hematology",
			Department:  "Laboratory",
			Price:       20.00,
			Duration:    "1-2 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "ESR Value", Units: "mm/hr", NormalRange: "0-15 (M), 0-20 (F)"},
			},
		},
		{
			Code:        "STOOLRE",
			Name:        "Stool Routine Examination",
			SampleTypes: []string{sample.TypeStool},
			Category:    "Microbiology",
			Department:  "Laboratory",
			Price:       20.00,
			Duration:    "1-2 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Occult Blood Result", NormalRange: "Negative"},
				{Name: "Ova", NormalRange: "None detected"},
				{Name: "Parasites", NormalRange: "None detected"},
				{Name: "Cysts", NormalRange: "None detected"},
			},
		},
		{
			Code:        "AFB",
			Name:        "Sputum AFB Smear",
			SampleTypes: []string{sample.TypeSputum},
			Category:    "Microbiology",
			Department:  "Laboratory",
			Price:       30.00,
			Duration:    "24 hours",
			Status:      labtest.StatusActive,
			Parameters: []labtest.Parameter{
				{Name: "Presence of AFB", NormalRange: "Negative"},
				{Name: "Quantification (if positive)", NormalRange: "See report"},
			},
		},
	}
}

func demoPatients() []patient.Patient {
	return []patient.Patient{
		{
			Name:    "John Doe",
			Age:     45,
			Gender:  "Male",
			Phone:   strPtr("123-456-7890"),
			Email:   strPtr("john.doe@example.com"),
			Address: strPtr("123 Main St, Anytown, ST 12345"),
		},
		{
			Name:    "Jane Smith",
			Age:     32,
			Gender:  "Female",
			Phone:   strPtr("234-567-8901"),
			Email:   strPtr("jane.smith@example.com"),
			Address: strPtr("456 Oak Ave, Somewhere, ST 23456"),
		},
		{
			Name:    "Bob Johnson",
			Age:     58,
			Gender:  "Male",
			Phone:   strPtr("345-678-9012"),
			Email:   strPtr("bob.johnson@example.com"),
			Address: strPtr("789 Pine Rd, Elsewhere, ST 34567"),
		},
	}
}
