package task

import (
	"fmt"
	"strings"
)

// RejectedError explains why a raw record cannot become a Task.
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	return e.Reason
}

func reject(format string, args ...any) error {
	return &RejectedError{Reason: fmt.Sprintf(format, args...)}
}

var requiredKeys = []string{"name", "description", "command"}

// Validate checks a decoded task record against the task schema. It returns
// nil for a valid record and a *RejectedError naming the first problem
// otherwise.
func Validate(raw map[string]any) error {
	for _, key := range requiredKeys {
		if _, ok := raw[key]; !ok {
			return reject("missing required field %q", key)
		}
	}

	for _, key := range []string{"name", "description"} {
		value, ok := raw[key].(string)
		if !ok {
			return reject("%s must be a string, got %s", key, typeName(raw[key]))
		}
		if strings.TrimSpace(value) == "" {
			return reject("%s must not be empty", key)
		}
	}

	command, ok := raw["command"].([]any)
	if !ok {
		return reject("command must be a list of strings, got %s", typeName(raw["command"]))
	}
	if len(command) == 0 {
		return reject("command must not be empty")
	}
	for index, part := range command {
		if _, ok := part.(string); !ok {
			return reject("command[%d] must be a string, got %s", index, typeName(part))
		}
	}

	for _, key := range []string{"auto_safe", "requires_sudo"} {
		value, present := raw[key]
		if !present {
			continue
		}
		if _, ok := value.(bool); !ok {
			return reject("%s must be a boolean, got %s", key, typeName(value))
		}
	}

	if value, present := raw["risk_level"]; present {
		level, _ := value.(string)
		if !validRisk(RiskLevel(level)) {
			return reject("risk_level must be one of %s, got %v", joinRisk(), value)
		}
	}

	if value, present := raw["check_command"]; present {
		if _, ok := value.([]any); !ok {
			return reject("check_command must be a list, got %s", typeName(value))
		}
	}

	if value, present := raw["family"]; present {
		family, _ := value.(string)
		if !validFamily(Family(family)) {
			return reject("family must be one of %s, got %v", joinFamilies(), value)
		}
	}

	return nil
}

// FromRecord validates an untyped record and converts it into a Task with
// explicit defaults for every optional field.
func FromRecord(raw any) (Task, error) {
	record, ok := raw.(map[string]any)
	if !ok {
		return Task{}, reject("record must be an object, got %s", typeName(raw))
	}
	if err := Validate(record); err != nil {
		return Task{}, err
	}

	t := Task{
		Name:        strings.TrimSpace(record["name"].(string)),
		Description: strings.TrimSpace(record["description"].(string)),
	}
	for _, part := range record["command"].([]any) {
		t.Command = append(t.Command, part.(string))
	}
	t.AutoSafe, _ = record["auto_safe"].(bool)
	t.RequiresSudo, _ = record["requires_sudo"].(bool)
	if level, ok := record["risk_level"].(string); ok {
		t.Risk = RiskLevel(level)
	}
	if probe, ok := record["check_command"].([]any); ok {
		for _, part := range probe {
			if s, ok := part.(string); ok {
				t.CheckCommand = append(t.CheckCommand, s)
			}
		}
	}
	if family, ok := record["family"].(string); ok {
		t.Family = Family(family)
	} else {
		t.Family = InferFamily(t.Name)
	}
	return t, nil
}

func validRisk(level RiskLevel) bool {
	for _, candidate := range riskLevels {
		if level == candidate {
			return true
		}
	}
	return false
}

func validFamily(family Family) bool {
	for _, candidate := range families {
		if family == candidate {
			return true
		}
	}
	return false
}

func joinRisk() string {
	names := make([]string, len(riskLevels))
	for i, level := range riskLevels {
		names[i] = string(level)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func joinFamilies() string {
	names := make([]string, len(families))
	for i, family := range families {
		names[i] = string(family)
	}
	return "{" + strings.Join(names, ", ") + "}"
}

// typeName reports the JSON type of a decoded value.
func typeName(value any) string {
	switch value.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int64, int32:
		return "number"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", value)
	}
}
