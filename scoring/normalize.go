// Package scoring содержит чистые функции подсчёта рейтинга:
// нормализацию дополнительных баллов и классификацию побед.
package scoring

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Первый корректный десятичный токен: необязательный минус,
// цифры, не более одной точки.
var decimalTokenRe = regexp.MustCompile(`-?(?:\d+(?:\.\d+)?|\.\d+)`)

var nonNumericRe = regexp.MustCompile(`[^0-9.\-]`)

// Normalize превращает сырое значение дополнительных баллов в decimal.
// Функция тотальная: любое значение, включая мусор вида
// "00.500.900.202.00" (несколько склеенных дробей из формы ведущего),
// даёт число, а не ошибку. Испорченное место за столом должно
// деградировать до нулевого вклада, а не ронять пересчёт рейтинга.
//
// Лестница разбора:
//  1. nil / отсутствие значения — 0.
//  2. Приведение к строке, запятые заменяются на точки.
//  3. Первый корректный десятичный токен слева направо.
//  4. Иначе: выбрасываем всё, кроме цифр, точки и минуса, оставляем
//     только первую точку и разбираем остаток.
//  5. Если и это не число — 0.
func Normalize(raw any) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}

	var s string
	switch v := raw.(type) {
	case string:
		s = v
	case *string:
		if v == nil {
			return decimal.Zero
		}
		s = *v
	case float64:
		return decimal.NewFromFloat(v)
	case float32:
		return decimal.NewFromFloat32(v)
	case int:
		return decimal.NewFromInt(int64(v))
	case int64:
		return decimal.NewFromInt(v)
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}

	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return decimal.Zero
	}

	if token := decimalTokenRe.FindString(s); token != "" {
		if d, err := decimal.NewFromString(token); err == nil {
			return d
		}
	}

	// Фоллбэк: очистка и склейка вокруг первой точки.
	cleaned := nonNumericRe.ReplaceAllString(s, "")
	if head, tail, found := strings.Cut(cleaned, "."); found {
		cleaned = head + "." + strings.ReplaceAll(tail, ".", "")
	}
	if d, err := decimal.NewFromString(cleaned); err == nil {
		return d
	}
	return decimal.Zero
}
