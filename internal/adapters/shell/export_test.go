package shell

// ParseShowIncludes exposes parseShowIncludes for testing.
func ParseShowIncludes(output []byte) (includes []string, log string, problem bool) {
	r := parseShowIncludes(output)
	return r.includes, string(r.log), r.problem
}

// MakeDepfile exposes makeDepfile for testing.
var MakeDepfile = makeDepfile

// RetargetDepfile exposes retargetDepfile for testing.
var RetargetDepfile = retargetDepfile

// ResolveEnvironment exposes resolveEnvironment for testing.
func ResolveEnvironment(sysEnv, path []string, vars map[string]string) []string {
	return resolveEnvironment(sysEnv, toolEnv{path: path, vars: vars})
}
