package logging

// With returns a logger that attaches kv to every entry. Loggers of this
// package bind natively; any other Logger is wrapped.
func With(l Logger, kv ...any) Logger {
	if len(kv) == 0 {
		return l
	}

	switch t := l.(type) {
	case nil:
		return NoOpLogger{}
	case NoOpLogger:
		return t
	case *AssistantLogger:
		nl := t
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				continue
			}
			nl = nl.WithContext(key, kv[i+1])
		}
		return nl
	case *ZapAdapter:
		return &ZapAdapter{sugar: t.sugar.With(kv...)}
	}

	return &boundLogger{next: l, kv: kv}
}

// ForSession scopes l to a conversation session.
func ForSession(l Logger, sessionID string) Logger {
	if al, ok := l.(*AssistantLogger); ok {
		return al.WithSession(sessionID)
	}
	return With(l, "session_id", sessionID)
}

// ForComponent scopes l to a logical component (flow, engine, tool, ...).
func ForComponent(l Logger, component string) Logger {
	if al, ok := l.(*AssistantLogger); ok {
		return al.WithComponent(component)
	}
	return With(l, "component", component)
}

type boundLogger struct {
	next Logger
	kv   []any
}

func (b *boundLogger) args(args []any) []any {
	out := make([]any, 0, len(b.kv)+len(args))
	return append(append(out, b.kv...), args...)
}

func (b *boundLogger) Debug(msg string, args ...any) { b.next.Debug(msg, b.args(args)...) }
func (b *boundLogger) Info(msg string, args ...any)  { b.next.Info(msg, b.args(args)...) }
func (b *boundLogger) Warn(msg string, args ...any)  { b.next.Warn(msg, b.args(args)...) }
func (b *boundLogger) Error(msg string, args ...any) { b.next.Error(msg, b.args(args)...) }
