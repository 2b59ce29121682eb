// Package offline provides a deterministic lexical interpreter used as
// a substitute when the model provider is unavailable. It scores the
// student's text against per-action hint lists and returns the best
// match with canned feedback.
package offline

import (
	"errors"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/MustafaEmreBiyik/DisHekimligiAI/internal/domain"
)

const Engine = "lexical-tr-v1"

// matchThreshold: below this score nothing in the text resembled a
// known action and the input is treated as conversation.
const matchThreshold = 1.0

var ErrEmptyInput = errors.New("offline: empty input")

type Interpreter struct{}

func NewInterpreter() *Interpreter {
	return &Interpreter{}
}

var actionHints = []struct {
	action string
	hints  []string
}{
	{action: "gather_medical_history", hints: []string{"anamnez", "tıbbi geçmiş", "medikal hikaye", "hastalık öyküsü", "medical history", "anamnesis"}},
	{action: "gather_personal_info", hints: []string{"kişisel bilgi", "yaş", "meslek", "sigara", "alkol", "personal info", "occupation"}},
	{action: "check_allergies_meds", hints: []string{"alerji", "ilaç kullanıyor", "kullandığı ilaç", "allergy", "allergies", "medication"}},
	{action: "order_radiograph", hints: []string{"radyografi", "röntgen", "periapikal", "panoramik", "film iste", "radiograph", "x-ray", "xray"}},
	{action: "diagnose_pulpitis", hints: []string{"pulpitis", "pulpa iltihabı", "irreversibl pulpit"}},
	{action: "prescribe_antibiotics", hints: []string{"antibiyotik", "amoksisilin", "antibiotic", "amoxicillin"}},
	{action: "refer_oral_surgery", hints: []string{"cerrahiye sevk", "ağız cerrahisi", "oral surgery", "sevk et", "refer"}},
	{action: "check_pacemaker", hints: []string{"kalp pili", "pacemaker"}},
	{action: "check_bleeding_disorder", hints: []string{"kanama bozukluğu", "pıhtılaşma", "hemofili", "bleeding disorder", "coagulation"}},
	{action: "check_diabetes", hints: []string{"diyabet", "şeker hastalığı", "kan şekeri", "diabetes", "blood sugar", "hba1c"}},
	{action: "check_oral_hygiene_habits", hints: []string{"ağız hijyeni", "fırçalama", "diş ipi", "oral hygiene", "brushing", "flossing"}},
	{action: "check_vital_signs", hints: []string{"vital", "tansiyon", "nabız", "ateş ölç", "blood pressure", "pulse", "vital signs"}},
	{action: "prescribe_palliative_care", hints: []string{"palyatif", "ağrı kesici", "semptomatik tedavi", "palliative", "painkiller", "analgesic"}},
	{action: "ask_systemic_symptoms", hints: []string{"sistemik", "eklem ağrısı", "halsizlik", "kilo kaybı", "systemic symptoms", "fatigue", "fever"}},
	{action: "perform_pathergy_test", hints: []string{"paterji", "pathergy"}},
	{action: "request_serology_tests", hints: []string{"seroloji", "kan testi", "vdrl", "rpr", "serology", "blood test"}},
	{action: "perform_oral_exam", hints: []string{"ağız içi muayene", "intraoral", "mukoza", "oral muayene", "oral exam", "intraoral exam"}},
	{action: "perform_extraoral_exam", hints: []string{"ekstraoral", "lenf nodu", "yüz muayenesi", "extraoral", "lymph node"}},
	{action: "diagnose_herpetic_gingivostomatitis", hints: []string{"herpetik", "gingivostomatit", "herpes", "hsv"}},
	{action: "diagnose_behcet_disease", hints: []string{"behçet", "behcet"}},
	{action: "diagnose_secondary_syphilis", hints: []string{"sifiliz", "frengi", "syphilis"}},
}

var cannedFeedback = map[string]string{
	"gather_medical_history":              "Hastanın tıbbi geçmişini sorguladınız.",
	"gather_personal_info":                "Hastanın kişisel bilgilerini aldınız.",
	"check_allergies_meds":                "Alerji ve ilaç kullanımını kontrol ettiniz.",
	"order_radiograph":                    "Radyografi istediniz.",
	"diagnose_pulpitis":                   "Pulpitis tanısı koydunuz.",
	"prescribe_antibiotics":               "Antibiyotik reçete ettiniz.",
	"refer_oral_surgery":                  "Hastayı ağız cerrahisine sevk ettiniz.",
	"check_pacemaker":                     "Kalp pili durumunu sorguladınız.",
	"check_bleeding_disorder":             "Kanama bozukluğu öyküsünü sorguladınız.",
	"check_diabetes":                      "Diyabet durumunu sorguladınız.",
	"check_oral_hygiene_habits":           "Ağız hijyeni alışkanlıklarını sorguladınız.",
	"check_vital_signs":                   "Vital bulguları kontrol ettiniz.",
	"prescribe_palliative_care":           "Palyatif tedavi önerdiniz.",
	"ask_systemic_symptoms":               "Sistemik semptomları sorguladınız.",
	"perform_pathergy_test":               "Paterji testi uyguladınız.",
	"request_serology_tests":              "Seroloji testleri istediniz.",
	"perform_oral_exam":                   "Ağız içi muayene yaptınız.",
	"perform_extraoral_exam":              "Ekstraoral muayene yaptınız.",
	"diagnose_herpetic_gingivostomatitis": "Herpetik gingivostomatit tanısı koydunuz.",
	"diagnose_behcet_disease":             "Behçet hastalığı tanısı koydunuz.",
	"diagnose_secondary_syphilis":         "Sekonder sifiliz tanısı koydunuz.",
}

func scoreActions(text string) map[string]float64 {
	scores := make(map[string]float64, len(actionHints))
	for _, item := range actionHints {
		for _, h := range item.hints {
			if strings.Contains(text, strings.ToLower(h)) {
				// Longer hints are more specific and carry more weight.
				weight := 1.0 + math.Min(float64(utf8.RuneCountInString(h))/10.0, 1.0)
				scores[item.action] += weight
			}
		}
	}
	return scores
}

func topAction(scores map[string]float64) (string, float64) {
	best := ""
	bestScore := 0.0
	for _, item := range actionHints {
		if s := scores[item.action]; s > bestScore {
			best = item.action
			bestScore = s
		}
	}
	return best, bestScore
}

// Interpret matches the student's text against the action hint lists.
// Unrecognized text is returned as general chat rather than an error;
// only blank input fails.
func (it *Interpreter) Interpret(rawAction string) (domain.Interpretation, error) {
	t := strings.ToLower(strings.TrimSpace(rawAction))
	if t == "" {
		return domain.Interpretation{}, ErrEmptyInput
	}

	scores := scoreActions(t)
	action, score := topAction(scores)
	if action == "" || score < matchThreshold {
		return domain.Interpretation{
			IntentType:          domain.IntentChat,
			InterpretedAction:   domain.ActionGeneralChat,
			ClinicalIntent:      "other",
			Priority:            "low",
			SafetyConcerns:      []string{},
			ExplanatoryFeedback: "Sizi tam anlayamadım, lütfen klinik adımınızı daha açık yazar mısınız?",
			StructuredArgs:      map[string]any{},
		}, nil
	}

	return domain.Interpretation{
		IntentType:          domain.IntentAction,
		InterpretedAction:   action,
		ClinicalIntent:      "other",
		Priority:            "medium",
		SafetyConcerns:      []string{},
		ExplanatoryFeedback: cannedFeedback[action],
		StructuredArgs:      map[string]any{},
	}, nil
}
