package rbac

// Default policy for the assessment engine. Students drive their own exam
// sessions and analytics; editors curate the catalog upstream and only need
// read surfaces here; admin gets everything including the event-log tail.
var RolePermissions = map[string][]string{
	"student": {
		"topic:resolve",
		"weakness:view-own",
		"exam:init",
		"exam:resume",
		"exam:answer",
		"exam:complete",
		"exam:abandon",
	},
	"editor": {
		"topic:resolve",
		"weakness:view-any",
	},
	"admin": {
		"*", // everything
	},
}
