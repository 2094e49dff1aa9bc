package whiteboard

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/SaramshGautam/collaBoard/core"
)

var (
	reactionTag  = "reaction"
	reactionText = "{0} must be one of: " + strings.Join(Reactions, ", ")
)

// InitValidators registers the overlay validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(reactionTag, reactionValidation)
	core.RegisterCustomTranslation(validate, translator, reactionTag, reactionText)
}

func reactionValidation(fl validator.FieldLevel) bool {
	return ValidReaction(fl.Field().String())
}

// NewReaction is a context menu reaction on a shape.
type NewReaction struct {
	Reaction string `json:"reaction" validate:"required,reaction"`
}

func (nr *NewReaction) Validate(validate *validator.Validate) error {
	nr.Reaction = core.CleanString(nr.Reaction, true /* lower */)
	return validate.Struct(nr)
}

// NewComment is a comment left on a shape.
type NewComment struct {
	Text string `json:"text" validate:"required,max=1000"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Text = core.CleanString(nc.Text)
	return validate.Struct(nc)
}
