package generator

import (
	"strings"

	"github.com/Harikishanth/healbee/internal/models"
)

// Hardcoded safety responses. Exactly two locales exist per case: Hindi
// when the detected language's two-letter prefix is "hi", English for
// everything else including an unset language.
const (
	emergencyResponseEN = "The symptoms you're describing sound serious and may require immediate medical attention. Please consult a doctor or go to the nearest hospital right away. I am not equipped to provide emergency medical assistance."
	emergencyResponseHI = "आपके द्वारा बताए गए लक्षण गंभीर लग रहे हैं और इसके लिए तत्काल चिकित्सा ध्यान देने की आवश्यकता हो सकती है। कृपया तुरंत डॉक्टर से सलाह लें या नजदीकी अस्पताल जाएँ। मैं आपातकालीन चिकित्सा सहायता प्रदान करने के लिए सुसज्जित नहीं हूँ।"

	diagnosisResponseEN = "I understand you're looking for answers, but I cannot provide a medical diagnosis. For any health concerns or to get a diagnosis, it's very important to consult a qualified healthcare professional."
	diagnosisResponseHI = "मैं समझता/सकती हूँ कि आप उत्तर ढूंढ रहे हैं, लेकिन मैं मेडिकल निदान प्रदान नहीं कर सकता/सकती। किसी भी स्वास्थ्य चिंता या निदान के लिए, कृपया एक योग्य स्वास्थ्य पेशेवर से सलाह लें।"

	medicationResponseEN = "I am unable to offer treatment advice or suggest specific medications. Please consult with your doctor or a qualified healthcare provider for any questions about treatments, medications, or managing your health condition."
	medicationResponseHI = "मैं उपचार सलाह या विशिष्ट दवाएं सुझाने में असमर्थ हूँ। उपचार, दवाओं या अपनी स्वास्थ्य स्थिति के प्रबंधन के बारे में किसी भी प्रश्न के लिए, कृपया अपने डॉक्टर या एक योग्य स्वास्थ्य सेवा प्रदाता से सलाह लें।"
)

// langPrefix reduces a language tag ("hi-IN", "en-US") to the part
// before the first hyphen, defaulting to English when unset.
func langPrefix(lang string) string {
	if lang == "" {
		return "en"
	}
	if i := strings.IndexByte(lang, '-'); i >= 0 {
		return lang[:i]
	}
	return lang
}

// safetyOverride returns a fixed response for queries that must never
// reach the model. Precedence, first match wins: emergency flag, then
// diagnosis requests, then medication-advice requests. The medication
// case additionally requires the literal substring "advice" in the
// lowercased query; that heuristic is kept as-is even though it can
// both over- and under-trigger.
func safetyOverride(cls models.ClassificationResult) (string, bool) {
	hindi := langPrefix(cls.LanguageDetected) == "hi"
	pick := func(hi, en string) string {
		if hindi {
			return hi
		}
		return en
	}

	if cls.IsEmergency {
		return pick(emergencyResponseHI, emergencyResponseEN), true
	}
	if cls.Intent == models.IntentDiagnosisRequest {
		return pick(diagnosisResponseHI, diagnosisResponseEN), true
	}
	if cls.Intent == models.IntentMedicationInfo &&
		strings.Contains(strings.ToLower(cls.OriginalText), "advice") {
		return pick(medicationResponseHI, medicationResponseEN), true
	}
	return "", false
}
