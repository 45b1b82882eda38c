package dialog

// Mode identifies which guided flow, if any, a session is currently in.
type Mode string

const (
	ModeIdle             Mode = "idle"
	ModeCollectingGift   Mode = "collecting_gift"
	ModeCollectingPerson Mode = "collecting_person"
)

// EffectKind identifies the persistence operation a completed flow requests.
type EffectKind string

const (
	EffectCreateGift   EffectKind = "create_gift"
	EffectCreatePerson EffectKind = "create_person"
)

// Flow is a YAML-mappable guided flow definition.
type Flow struct {
	Name        string      `yaml:"name"        json:"name"`
	Version     string      `yaml:"version"     json:"version"`
	Description string      `yaml:"description" json:"description"`
	Mode        Mode        `yaml:"mode"        json:"mode"`
	Keywords    []string    `yaml:"keywords"    json:"keywords"`
	Hint        string      `yaml:"hint"        json:"hint"`
	Steps       []FieldStep `yaml:"steps"       json:"steps"`
	Effect      EffectKind  `yaml:"effect"      json:"effect"`
}

// FieldStep is one data-collection step in a flow. The prompt is a Go
// template evaluated against the draft collected so far. A terminal step is
// the confirmation gate: it stores no value and ends the flow.
type FieldStep struct {
	Key      string `yaml:"key"      json:"key"`
	Prompt   string `yaml:"prompt"   json:"prompt"`
	Optional bool   `yaml:"optional" json:"optional,omitempty"`
	Terminal bool   `yaml:"terminal" json:"terminal,omitempty"`
}

// Effect describes a persistence operation for the orchestrating shell to
// carry out. The engine only ever describes the operation; performing it is
// the caller's job.
type Effect struct {
	Kind    EffectKind        `json:"kind"`
	Flow    string            `json:"flow"`
	Payload map[string]string `json:"payload"`
}

// StepIndex returns the position of the step with the given key, or -1.
func (f *Flow) StepIndex(key string) int {
	for i, s := range f.Steps {
		if s.Key == key {
			return i
		}
	}
	return -1
}

// FieldKeys returns the keys of all value-collecting (non-terminal) steps
// in collection order.
func (f *Flow) FieldKeys() []string {
	keys := make([]string, 0, len(f.Steps))
	for _, s := range f.Steps {
		if s.Terminal {
			continue
		}
		keys = append(keys, s.Key)
	}
	return keys
}
