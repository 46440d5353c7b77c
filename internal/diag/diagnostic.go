package diag

// Note is one labelled detail line, e.g. expected: Callable[[int], str].
type Note struct {
	Key   string
	Value string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subject  string
	Notes    []Note
}

func New(sev Severity, code Code, subject, msg string) Diagnostic {
	return Diagnostic{Severity: sev, Code: code, Subject: subject, Message: msg}
}

func NewError(code Code, subject, msg string) Diagnostic {
	return New(SevError, code, subject, msg)
}

// WithNote returns d with one more note; d itself is not modified.
func (d Diagnostic) WithNote(key, value string) Diagnostic {
	notes := make([]Note, len(d.Notes), len(d.Notes)+1)
	copy(notes, d.Notes)
	d.Notes = append(notes, Note{Key: key, Value: value})
	return d
}

// WithSubject returns d reattached to subject.
func (d Diagnostic) WithSubject(subject string) Diagnostic {
	d.Subject = subject
	return d
}

// Note returns the value of the first note with key.
func (d Diagnostic) Note(key string) (string, bool) {
	for _, n := range d.Notes {
		if n.Key == key {
			return n.Value, true
		}
	}
	return "", false
}
