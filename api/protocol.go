package api

const postTaskMaxSize = 64 * 1024 // 64 KiB

const (
	routeTasks = "/api/tasks"
	routeTask  = "/api/tasks/:id"
)

// echo has no constant for it
const headerAcceptLanguage = "Accept-Language"

// message keys
const (
	msgDetailsNotSet = "tasks.create.details.errors.not_set"
	msgMalformedBody = "tasks.create.errors.malformed_body"
	msgTaskNotFound  = "tasks.errors.not_found"
	msgInternalError = "errors.internal"
)
