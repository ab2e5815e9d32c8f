package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ILLUVRSE/adoptions/campaign-service/internal/availability"
)

// Field spellings seen across table exports, most specific first.
var (
	NameFields        = availability.Sources{"Name", "name", "Nombre"}
	DescriptionFields = availability.Sources{"Description", "description", "Descripción"}
	StartFields       = availability.Sources{"Start Date", "startDate", "start_date"}
	DeadlineFields    = availability.Sources{"Receiving Deadline", "receivingDeadline", "deadline"}
	EventFields       = availability.Sources{"Event Date", "eventDate", "event_date"}
	TotalFields       = availability.Sources{"Total Letters", "totalLetters", "Letters"}
	ConsumedFields    = availability.Sources{"Adopted Letters", "adoptedLetters", "Adopters"}
	FeaturedFields    = availability.Sources{"Featured", "featured", "Show On Homepage"}
	ImageFields       = availability.Sources{"Images", "images", "Imagen"}
)

// RecordedAdoptersField receives the ids of adoptions recorded by this
// service. It is kept apart from the imported consumed counters, which are
// never overwritten; the two are added together.
const RecordedAdoptersField = "Recorded Adopters"

// StringField reads the first present source as text.
func StringField(fields map[string]any, src availability.Sources) string {
	switch v := src.Lookup(fields).(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// BoolField reads the first present source as a flag. Checkbox-style
// values, "true"/"yes"/"1" and non-zero numbers count as set.
func BoolField(fields map[string]any, src availability.Sources) bool {
	switch v := src.Lookup(fields).(type) {
	case bool:
		return v
	case float64:
		return v != 0
	case int:
		return v != 0
	case string:
		s := strings.ToLower(strings.TrimSpace(v))
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
		return s == "yes" || s == "si" || s == "sí"
	default:
		return false
	}
}
