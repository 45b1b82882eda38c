package dialog

// Flow and step names used by the built-in flows. The shell's effect
// orchestration keys off these, so YAML overrides must keep them stable.
const (
	FlowGift   = "gift"
	FlowPerson = "person"

	StepConfirm = "confirm"

	FieldRecipient       = "recipient"
	FieldEventType       = "event_type"
	FieldEventDate       = "event_date"
	FieldGiftAmount      = "gift_amount"
	FieldPersonalMessage = "personal_message"

	FieldName         = "name"
	FieldRelationship = "relationship"
	FieldBirthday     = "birthday"
)

const giftConfirmPrompt = `Here's the gift I have so far:
- Recipient: {{field .Draft "recipient"}}
- Occasion: {{field .Draft "event_type"}}
- Date: {{field .Draft "event_date"}}
- Amount: {{field .Draft "gift_amount"}}
- Personal message: {{field .Draft "personal_message"}}
Shall I schedule it? (yes/no)`

const personConfirmPrompt = `Here's the person I have so far:
- Name: {{field .Draft "name"}}
- Relationship: {{field .Draft "relationship"}}
- Birthday: {{field .Draft "birthday"}}
Shall I save them? (yes/no)`

// BuiltinFlows returns the shipped gift and person flows, in intent
// priority order: gift keywords are checked before person keywords.
func BuiltinFlows() []*Flow {
	return []*Flow{
		{
			Name:        FlowGift,
			Version:     "1.0",
			Description: "Schedule a gift for someone",
			Mode:        ModeCollectingGift,
			Keywords:    []string{"gift"},
			Hint:        `say "add a gift" to schedule a gift`,
			Effect:      EffectCreateGift,
			Steps: []FieldStep{
				{Key: FieldRecipient, Prompt: "Who is the gift for?"},
				{Key: FieldEventType, Prompt: "What's the occasion? (birthday, anniversary, holiday...)"},
				{Key: FieldEventDate, Prompt: "When is it? (for example 2025-12-01)"},
				{Key: FieldGiftAmount, Prompt: "Roughly how much would you like to spend?"},
				{Key: FieldPersonalMessage, Optional: true,
					Prompt: `Would you like to include a personal message? Type it now, or say "skip".`},
				{Key: StepConfirm, Terminal: true, Prompt: giftConfirmPrompt},
			},
		},
		{
			Name:        FlowPerson,
			Version:     "1.0",
			Description: "Save a person to your gift list",
			Mode:        ModeCollectingPerson,
			Keywords:    []string{"person", "contact", "friend"},
			Hint:        `say "add a person" to save someone to your list`,
			Effect:      EffectCreatePerson,
			Steps: []FieldStep{
				{Key: FieldName, Prompt: "What's their name?"},
				{Key: FieldRelationship, Prompt: "How do you know them? (friend, family, coworker...)"},
				{Key: FieldBirthday, Optional: true,
					Prompt: `When is their birthday? Say "skip" if you don't know.`},
				{Key: StepConfirm, Terminal: true, Prompt: personConfirmPrompt},
			},
		},
	}
}
