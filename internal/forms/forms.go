package forms

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// InputError is a validation failure that is shown to the user as is.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputError(field, msg string) error {
	return &InputError{Field: field, Message: msg}
}

var validate = validator.New()

// Product names travel in button data, so both the visible length and the
// encoded size are capped.
const (
	MaxProductNameRunes = 24
	MaxProductNameBytes = 48
)

type PlanInput struct {
	Name  string `validate:"required,max=64"`
	Days  *int   `validate:"omitempty,gt=0,lte=36500"`
	Price int64  `validate:"gte=0"`
}

// ParsePlanInput parses "Name;Days;Price". Empty days means an unlimited plan.
// Price is in whole rubles.
func ParsePlanInput(raw string) (PlanInput, error) {
	parts := strings.Split(strings.TrimSpace(raw), ";")
	if len(parts) != 3 {
		return PlanInput{}, inputError("plan", "Неверный формат. Используйте: Название;Дни;Цена")
	}

	in := PlanInput{Name: strings.TrimSpace(parts[0])}
	if in.Name == "" {
		return PlanInput{}, inputError("name", "Название тарифа не может быть пустым.")
	}

	if days := strings.TrimSpace(parts[1]); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return PlanInput{}, inputError("days", "Количество дней должно быть положительным числом или пустым для бессрочного тарифа.")
		}
		in.Days = &n
	}

	price, err := strconv.ParseInt(strings.TrimSpace(parts[2]), 10, 64)
	if err != nil || price < 0 {
		return PlanInput{}, inputError("price", "Цена должна быть целым неотрицательным числом.")
	}
	in.Price = price

	if err := validate.Struct(in); err != nil {
		return PlanInput{}, inputError("plan", "Проверьте название (до 64 символов) и срок тарифа.")
	}
	return in, nil
}

type emailInput struct {
	Email string `validate:"required,email,max=200"`
}

func ParseEmail(raw string) (string, error) {
	in := emailInput{Email: strings.TrimSpace(raw)}
	if err := validate.Struct(in); err != nil {
		return "", inputError("email", "Пожалуйста, введите корректный Email.")
	}
	return in.Email, nil
}

// ParseAmount converts rubles ("150", "150,5", "150.50 ₽") to kopecks.
func ParseAmount(raw string) (int64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, "₽")
	s = strings.TrimSuffix(strings.TrimSpace(s), "руб")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, ",", ".")

	bad := inputError("amount", "Введите сумму числом, например 150 или 150,50.")
	whole, frac, hasFrac := strings.Cut(s, ".")
	if whole == "" || !isDigits(whole) {
		return 0, bad
	}
	if hasFrac && (frac == "" || len(frac) > 2 || !isDigits(frac)) {
		return 0, bad
	}
	rub, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || rub > 1_000_000_000 {
		return 0, bad
	}
	kop := int64(0)
	if hasFrac {
		if len(frac) == 1 {
			frac += "0"
		}
		kop, _ = strconv.ParseInt(frac, 10, 64)
	}
	amount := rub*100 + kop
	if amount <= 0 {
		return 0, inputError("amount", "Сумма должна быть больше нуля.")
	}
	return amount, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

var phoneRe = regexp.MustCompile(`^\+?[78]\d{10}$`)

// ParsePhone accepts Russian numbers with optional separators and returns them
// without formatting.
func ParsePhone(raw string) (string, error) {
	phone := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, strings.TrimSpace(raw))
	if !phoneRe.MatchString(phone) {
		return "", inputError("phone", "Введите номер в формате +79991234567.")
	}
	return phone, nil
}

func ParseBank(raw string) (string, error) {
	bank := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(bank)
	if n < 3 || n > 100 {
		return "", inputError("bank", "Название банка должно содержать от 3 до 100 символов.")
	}
	return bank, nil
}

var promoCodeRe = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ParsePromoCodes splits a bulk upload on newlines, commas, semicolons and spaces.
// Malformed entries are returned separately and never stored.
func ParsePromoCodes(raw string) (valid []string, invalid []string) {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		switch r {
		case '\n', '\r', ',', ';', ' ', '\t':
			return true
		}
		return false
	})
	valid = make([]string, 0, len(fields))
	invalid = make([]string, 0)
	for _, f := range fields {
		if promoCodeRe.MatchString(f) {
			valid = append(valid, f)
		} else {
			invalid = append(invalid, f)
		}
	}
	return valid, invalid
}

func ParseProductName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", inputError("name", "Название не может быть пустым.")
	}
	if strings.ContainsAny(name, "\n\r") {
		return "", inputError("name", "Название должно быть в одну строку.")
	}
	if utf8.RuneCountInString(name) > MaxProductNameRunes {
		return "", inputError("name", "Название слишком длинное: не больше 24 символов.")
	}
	if len(name) > MaxProductNameBytes {
		return "", inputError("name", "Название слишком длинное: уберите эмодзи и специальные символы.")
	}
	return name, nil
}

func ParseRequisites(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	lower := strings.ToLower(text)
	if text == "" || !(strings.Contains(lower, "банк") || strings.Contains(lower, "bank")) {
		return "", inputError("requisites", "Реквизиты должны содержать название банка.")
	}
	return text, nil
}

// ParseMaterialText treats "нет" as no text.
func ParseMaterialText(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.EqualFold(text, "нет") || strings.EqualFold(text, "no") {
		return ""
	}
	return text
}

const maxMessageRunes = 4096

func ParseBroadcastText(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return "", inputError("text", "Текст рассылки не может быть пустым.")
	}
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return "", inputError("text", "Текст рассылки длиннее 4096 символов.")
	}
	return text, nil
}
