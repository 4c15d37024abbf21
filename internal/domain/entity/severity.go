package entity

// Severity срочность неисправности.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Rank возвращает порядковый номер уровня (0 для неизвестного значения).
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Reported сообщает, попадает ли уровень в итоговый отчёт для эксплуатации.
func (s Severity) Reported() bool {
	return s.Rank() >= SeverityMedium.Rank()
}

// Severities перечисляет уровни от низшего к высшему.
func Severities() []Severity {
	return []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}
}
