package repository

const (
	UsersKey         = "ai_planner_users"
	SessionKeyPrefix = "ai_planner_active_user"
	TasksKeyPrefix   = "ai_tasks_"
	LegacyTasksKey   = "komplement_tasks_v1"
)

func TasksKey(username string) string {
	return TasksKeyPrefix + username
}

func SessionKey(sessionID string) string {
	return SessionKeyPrefix + ":" + sessionID
}
