package rbac

// Default policy. Administrators hold everything; standard users can browse,
// take quizzes and read their own results.
var RolePermissions = map[string][]string{
	"user": {
		"quiz:view",
		"question:view",
		"quiz:attempt",
		"result:view-own",
		"leaderboard:view",
	},
	"admin": {
		"*",
	},
}
