// Package validation implements the field format rules and the
// contact-method companion field rule for lead submissions.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"terrasite_backend/internal/leads/domain"
	"terrasite_backend/internal/leads/transport"
	"terrasite_backend/platform/validator"

	playground "github.com/go-playground/validator/v10"
)

var (
	personNamePattern = regexp.MustCompile(`^[а-яёА-ЯЁa-zA-Z\s\-]+$`)
	phoneNoisePattern = regexp.MustCompile(`[\s\-()]`)
	ruPhonePattern    = regexp.MustCompile(`^(\+7|8)\d{10}$`)
	telegramPattern   = regexp.MustCompile(`^@[a-zA-Z0-9_]{5,32}$`)
)

// repeatedRunLimit is the length at which a value made of one repeated
// character is treated as spam.
const repeatedRunLimit = 21

const (
	msgPhoneFormat = "Некорректный формат номера телефона"
	msgServices    = "Выберите хотя бы одну услугу"
)

// messages maps "<json field>.<tag>" to the text shown on the site.
var messages = map[string]string{
	"name.required":                "Введите имя",
	"name.min":                     "Имя должно содержать от 2 до 50 символов",
	"name.max":                     "Имя должно содержать от 2 до 50 символов",
	"name.person_name":             "Имя может содержать только буквы, пробелы и дефисы",
	"services.required":            msgServices,
	"services.min":                 msgServices,
	"description.required":         "Введите описание проекта",
	"description.min":              "Описание должно содержать минимум 50 символов",
	"description.max":              "Описание не должно превышать 2000 символов",
	"description.min_words":        "Описание должно содержать минимум 8 слов",
	"description.not_repeated":     "Описание содержит слишком много повторяющихся символов",
	"budget.required":              "Выберите бюджет проекта",
	"contact_method.required":      "Выберите способ связи",
	"phone.ru_phone":               msgPhoneFormat,
	"phone_number.ru_phone":        msgPhoneFormat,
	"telegram.telegram_username":   "Некорректный формат Telegram username",
	"call_time.min":                "Укажите время для звонка более подробно",
	"call_time.max":                "Слишком длинное описание времени для звонка",
	"email.email":                  "Некорректный email адрес",
	"email.max":                    "Некорректный email адрес",
}

// FieldValidator enforces per-field format rules on a submission.
type FieldValidator struct {
	val *validator.Validator
}

// NewFieldValidator registers the lead form rules on val.
func NewFieldValidator(val *validator.Validator) (*FieldValidator, error) {
	rules := map[string]playground.Func{
		"person_name":       isPersonName,
		"ru_phone":          isRussianPhone,
		"telegram_username": isTelegramUsername,
		"min_words":         hasMinWords,
		"not_repeated":      isNotRepeated,
		"budget":            isBudget,
		"contact_method":    isContactMethod,
	}
	for tag, fn := range rules {
		if err := val.RegisterValidation(tag, fn); err != nil {
			return nil, fmt.Errorf("register %s: %w", tag, err)
		}
	}
	return &FieldValidator{val: val}, nil
}

// Validate normalizes req in place and checks every field rule.
// The first violation is returned as *domain.FieldValidationError.
func (v *FieldValidator) Validate(req *transport.SubmitLeadRequest) error {
	req.Normalize()

	err := v.val.Struct(req)
	if err == nil {
		return nil
	}

	var verrs playground.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return toFieldError(verrs[0])
}

// ValidateContact checks that the companion field(s) required by the
// submission's contact method are present.
func ValidateContact(sub domain.Submission) error {
	ch, ok := domain.ChannelFor(sub.ContactMethod)
	if !ok {
		return &domain.FieldValidationError{
			Field:   "contact_method",
			Message: fmt.Sprintf("Недопустимый способ связи: %s", sub.ContactMethod),
		}
	}
	if !ch.HasRequiredFields(sub) {
		return &domain.MissingContactFieldError{Method: ch.Method, Fields: ch.Required}
	}
	return nil
}

func toFieldError(fe playground.FieldError) *domain.FieldValidationError {
	field := fe.Field()
	if i := strings.IndexByte(field, '['); i >= 0 {
		field = field[:i]
	}

	msg, ok := messages[field+"."+fe.Tag()]
	if !ok {
		switch fe.Tag() {
		case "budget":
			msg = fmt.Sprintf("Недопустимый бюджет: %v", fe.Value())
		case "contact_method":
			msg = fmt.Sprintf("Недопустимый способ связи: %v", fe.Value())
		default:
			msg = "Некорректное значение поля " + field
		}
	}
	return &domain.FieldValidationError{Field: field, Message: msg}
}

func isPersonName(fl playground.FieldLevel) bool {
	return personNamePattern.MatchString(fl.Field().String())
}

func isRussianPhone(fl playground.FieldLevel) bool {
	cleaned := phoneNoisePattern.ReplaceAllString(fl.Field().String(), "")
	return ruPhonePattern.MatchString(cleaned)
}

func isTelegramUsername(fl playground.FieldLevel) bool {
	return telegramPattern.MatchString(fl.Field().String())
}

func hasMinWords(fl playground.FieldLevel) bool {
	minimum, err := strconv.Atoi(fl.Param())
	if err != nil {
		return false
	}
	return len(strings.Fields(fl.Field().String())) >= minimum
}

func isNotRepeated(fl playground.FieldLevel) bool {
	s := fl.Field().String()
	if utf8.RuneCountInString(s) < repeatedRunLimit {
		return true
	}
	first, _ := utf8.DecodeRuneInString(s)
	for _, r := range s {
		if r != first {
			return true
		}
	}
	return false
}

func isBudget(fl playground.FieldLevel) bool {
	return domain.Budget(fl.Field().String()).Valid()
}

func isContactMethod(fl playground.FieldLevel) bool {
	return domain.ContactMethod(fl.Field().String()).Valid()
}
