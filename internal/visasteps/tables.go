package visasteps

import (
	"embed"
	"encoding/json"
	"fmt"
)

//go:embed rules/*.json
var rulesFS embed.FS

// languageTest gates the language-test step on both the user's status and the
// destination country.
type languageTest struct {
	Step                 Step     `json:"step"`
	RequiredForStatus    []string `json:"required_for_status"`
	RequiredForCountries []string `json:"required_for_countries"`
}

type countryRequirements struct {
	MedicalExam bool `json:"medical_exam"`
	Biometrics  bool `json:"biometrics"`
}

type tipTables struct {
	Status  map[string][]string `json:"status"`
	Country map[string][]string `json:"country"`
}

type extraSteps struct {
	MedicalExam Step `json:"medical_exam"`
	Biometrics  Step `json:"biometrics"`
}

var (
	statusSteps map[string][]Step
	commonSteps []Step
	langTest    languageTest
	countryReqs map[string]countryRequirements
	extras      extraSteps
	exemptList  []string
	tips        tipTables
	criticalIDs map[string][]int
	visaExempt  map[string]bool
)

func init() {
	mustLoad("rules/status_steps.json", &statusSteps)
	mustLoad("rules/common_steps.json", &commonSteps)
	mustLoad("rules/language_test.json", &langTest)
	mustLoad("rules/country_requirements.json", &countryReqs)
	mustLoad("rules/extra_steps.json", &extras)
	mustLoad("rules/visa_exempt.json", &exemptList)
	mustLoad("rules/tips.json", &tips)
	mustLoad("rules/critical_steps.json", &criticalIDs)

	stampKind(commonSteps, KindCommon)
	langTest.Step.Kind = KindLanguage
	extras.MedicalExam.Kind = KindExtra
	extras.Biometrics.Kind = KindExtra
	for status := range statusSteps {
		stampKind(statusSteps[status], KindStatus)
	}

	visaExempt = make(map[string]bool, len(exemptList))
	for _, code := range exemptList {
		visaExempt[code] = true
	}
}

func mustLoad(name string, v any) {
	data, err := rulesFS.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("visasteps: read %s: %v", name, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		panic(fmt.Sprintf("visasteps: parse %s: %v", name, err))
	}
}

func stampKind(steps []Step, kind string) {
	for i := range steps {
		steps[i].Kind = kind
	}
}
