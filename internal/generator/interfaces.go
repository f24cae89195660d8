package generator

import "github.com/toyz/numderive/internal/models"

// Options tune how declarations are spelled. The zero value uses the default
// conventions and duplicates through the Clone method.
type Options struct {
	Conventions models.Conventions
	ValueCopy   bool   // duplicate the receiver by assignment instead of calling Clone
	Native      bool   // apply the built-in compound-assignment operator instead of the Assign method
	Clone       string // overrides the duplication method name for this request
}

func (o Options) conventions() (models.Conventions, error) {
	conv := o.Conventions.WithDefaults()
	if o.Clone != "" {
		conv.Clone = o.Clone
	}
	if err := conv.Validate(); err != nil {
		return models.Conventions{}, err
	}
	return conv, nil
}
