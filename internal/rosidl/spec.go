package rosidl

// Spec is the common surface of all parsed interface definitions. Concrete
// implementations form a closed set: MessageSpec, ServiceSpec and ActionSpec.
// Consumers dispatch with a type switch rather than probing properties.
type Spec interface {
	// Package returns the name of the package the definition belongs to.
	Package() string
	// BaseName returns the definition name without package qualification.
	BaseName() string
	// Kind returns the definition format the spec was parsed from.
	Kind() Kind
	// CollectDependencies adds every package directly referenced by the
	// spec's fields into the given set, excluding the spec's own package.
	CollectDependencies(into map[string]struct{})
}

// MessageSpec is a parsed message definition: an ordered sequence of typed
// fields plus constants.
type MessageSpec struct {
	Pkg       string
	Name      string
	Fields    []Field
	Constants []Constant
}

func (s *MessageSpec) Package() string  { return s.Pkg }
func (s *MessageSpec) BaseName() string { return s.Name }
func (s *MessageSpec) Kind() Kind       { return KindMessage }

// CollectDependencies implements Spec. A reference back into the owning
// package is not a dependency and is skipped.
func (s *MessageSpec) CollectDependencies(into map[string]struct{}) {
	for _, f := range s.Fields {
		if f.Type.IsBuiltin || f.Type.Pkg == "" || f.Type.Pkg == s.Pkg {
			continue
		}
		into[f.Type.Pkg] = struct{}{}
	}
}

// ServiceSpec is a parsed service definition: a request and a response
// message pair.
type ServiceSpec struct {
	Pkg      string
	Name     string
	Request  *MessageSpec
	Response *MessageSpec
}

func (s *ServiceSpec) Package() string  { return s.Pkg }
func (s *ServiceSpec) BaseName() string { return s.Name }
func (s *ServiceSpec) Kind() Kind       { return KindService }

// CollectDependencies implements Spec.
func (s *ServiceSpec) CollectDependencies(into map[string]struct{}) {
	s.Request.CollectDependencies(into)
	s.Response.CollectDependencies(into)
}

// ActionSpec is a parsed action definition: goal, result and feedback
// sections.
type ActionSpec struct {
	Pkg      string
	Name     string
	Goal     *MessageSpec
	Result   *MessageSpec
	Feedback *MessageSpec
}

func (s *ActionSpec) Package() string  { return s.Pkg }
func (s *ActionSpec) BaseName() string { return s.Name }
func (s *ActionSpec) Kind() Kind       { return KindAction }

// CollectDependencies implements Spec.
func (s *ActionSpec) CollectDependencies(into map[string]struct{}) {
	s.Goal.CollectDependencies(into)
	s.Result.CollectDependencies(into)
	s.Feedback.CollectDependencies(into)
}

// SynthesizedMessages returns the Goal/Result/Feedback family of the action
// as standalone message specs, named "<Action>_Goal" and so on. Callers add
// them to a package's message table unless an on-disk message of the same
// name already exists there.
func (s *ActionSpec) SynthesizedMessages() []*MessageSpec {
	synth := func(suffix string, section *MessageSpec) *MessageSpec {
		return &MessageSpec{
			Pkg:       s.Pkg,
			Name:      s.Name + "_" + suffix,
			Fields:    section.Fields,
			Constants: section.Constants,
		}
	}
	return []*MessageSpec{
		synth("Goal", s.Goal),
		synth("Result", s.Result),
		synth("Feedback", s.Feedback),
	}
}
