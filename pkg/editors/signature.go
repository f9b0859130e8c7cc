package editors

import "github.com/goliatone/go-varform/pkg/widgets"

// Signature is an Identity whose committed value also names the external
// signature service configured for the variable.
type Signature struct {
	Identity
}

func newSignature(env Env, props Props) *Signature {
	s := &Signature{}
	s.compose = func(id, email string) (string, error) {
		service := s.env.Engine.ExternalSignatureServiceName(s.props.Variable, s.props.Exec)
		return s.env.Engine.CreateExternalSignatureValue(id, email, service)
	}
	s.display = s.email
	s.init(widgets.KindExternalSignature, env, props)
	return s
}

// ServiceName returns the signature service tag.
func (s *Signature) ServiceName() string {
	return s.env.Engine.ExternalSignatureServiceName(s.props.Variable, s.props.Exec)
}
