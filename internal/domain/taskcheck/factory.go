package taskcheck

// NewValidator picks the validator of a task by its source.
func NewValidator(source string, members MemberGetter) Validator {
	switch source {
	case TelegramSource:
		return &channelValidator{members: members}

	default:
		return &visitLinkValidator{}
	}
}
