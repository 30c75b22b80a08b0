package grades

import "fmt"

// FetchStatus is the outcome of FetchSubjects.
type FetchStatus int

const (
	StatusSuccess FetchStatus = iota
	// StatusAuthError means the session was expired or rejected, it has been
	// logged out.
	StatusAuthError
	StatusServerError
	StatusTimeout
	StatusGeneralError
)

func (s FetchStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusAuthError:
		return "auth_error"
	case StatusServerError:
		return "server_error"
	case StatusTimeout:
		return "timeout"
	case StatusGeneralError:
		return "general_error"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

// Message is the text shown to the user for the status, it is empty for
// StatusSuccess.
func (s FetchStatus) Message() string {
	switch s {
	case StatusSuccess:
		return ""
	case StatusAuthError:
		return "Сессия истекла. Нужно войти заново."
	case StatusServerError:
		return "Ошибка сервера."
	case StatusTimeout:
		return "Сервер не отвечает (таймаут)."
	}
	return "Не удалось загрузить данные."
}
