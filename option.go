package isolator

// Option configures a single BuildAndLaunch call.
type Option func(*callOptions)

// callOptions holds per-call configuration applied via Option functions.
type callOptions struct {
	confirm    ConfirmCallback
	confirmSet bool
	extraEnv   []string
}

// WithConfirm overrides the pre-flight confirmation hook for a single call.
// Passing nil disables confirmation for the call.
func WithConfirm(cb ConfirmCallback) Option {
	return func(o *callOptions) {
		o.confirm = cb
		o.confirmSet = true
	}
}

// WithExtraEnv adds environment entries for the launched application.
// Each entry should be in "KEY=VALUE" format. The entries are threaded
// explicitly to the final exec; the supervisor's own environment is never
// mutated.
func WithExtraEnv(env ...string) Option {
	cpy := append([]string(nil), env...)
	return func(o *callOptions) {
		o.extraEnv = append(o.extraEnv, cpy...)
	}
}
