package domain

import (
	"errors"
	"strings"
)

// ErrorKind classifies a domain error. The transport layer maps each kind to
// exactly one HTTP status code.
type ErrorKind string

const (
	KindValidation     ErrorKind = "ValidationError"
	KindAuthentication ErrorKind = "AuthenticationError"
	KindForbidden      ErrorKind = "ForbiddenError"
	KindNotFound       ErrorKind = "NotFoundError"
	KindInternal       ErrorKind = "AppError"
)

// FieldError describes a single invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error is the single error type raised by business code. Code is a stable
// identifier clients can branch on; Message is safe to show to end users.
type Error struct {
	Kind    ErrorKind
	Code    string
	Message string
	Fields  []FieldError
	cause   error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Code)
	if e.cause != nil {
		b.WriteString(": ")
		b.WriteString(e.cause.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.cause }

// Is matches errors of the same kind and code, so a sentinel still matches
// after WithFields or Wrap produced a copy.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// WithFields returns a copy of e carrying field-level details.
func (e *Error) WithFields(fields ...FieldError) *Error {
	cp := *e
	cp.Fields = append(append([]FieldError(nil), e.Fields...), fields...)
	return &cp
}

// WithMessage returns a copy of e with a different user-facing message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

// Wrap returns a copy of e that records cause for logging. The cause is never
// serialized to clients.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.cause = cause
	return &cp
}

func newError(kind ErrorKind, code, msg string) *Error {
	return &Error{Kind: kind, Code: code, Message: msg}
}

func Validation(code, msg string) *Error     { return newError(KindValidation, code, msg) }
func Authentication(code, msg string) *Error { return newError(KindAuthentication, code, msg) }
func Forbidden(code, msg string) *Error      { return newError(KindForbidden, code, msg) }
func NotFound(code, msg string) *Error       { return newError(KindNotFound, code, msg) }

// Internal wraps an unexpected failure (store, I/O) into the generic 500 kind.
func Internal(cause error) *Error {
	return newError(KindInternal, "INTERNAL_ERROR", "Erro interno do servidor").Wrap(cause)
}

// KindOf reports the kind of err, defaulting to KindInternal for anything that
// is not a *Error.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

var (
	ErrInvalidInput = Validation("VALIDATION_FAILED", "Dados inválidos")

	ErrTokenRequired      = Authentication("TOKEN_REQUIRED", "Token de acesso requerido")
	ErrTokenInvalid       = Authentication("TOKEN_INVALID", "Token inválido ou expirado")
	ErrSessionNotFound    = Authentication("SESSION_NOT_FOUND", "Sessão inválida")
	ErrSessionExpired     = Authentication("SESSION_EXPIRED", "Sessão expirada")
	ErrInvalidCredentials = Authentication("INVALID_CREDENTIALS", "Email ou senha inválidos")

	ErrForbidden       = Forbidden("FORBIDDEN", "Acesso negado")
	ErrCompanyInactive = Forbidden("COMPANY_INACTIVE", "Empresa inativa ou suspensa")
	ErrUserInactive    = Forbidden("USER_INACTIVE", "Usuário inativo")

	ErrCompanyNotFound    = NotFound("COMPANY_NOT_FOUND", "Empresa não encontrada")
	ErrUserNotFound       = NotFound("USER_NOT_FOUND", "Usuário não encontrado")
	ErrClientNotFound     = NotFound("CLIENT_NOT_FOUND", "Cliente não encontrado")
	ErrPropertyNotFound   = NotFound("PROPERTY_NOT_FOUND", "Imóvel não encontrado")
	ErrInspectionNotFound = NotFound("INSPECTION_NOT_FOUND", "Vistoria não encontrada")
	ErrUploadNotFound     = NotFound("UPLOAD_NOT_FOUND", "Arquivo não encontrado")
	ErrContestNotFound    = NotFound("CONTEST_NOT_FOUND", "Contestação não encontrada")
	ErrSyncNotFound       = NotFound("SYNC_OPERATION_NOT_FOUND", "Operação de sincronização não encontrada")

	ErrEmailTaken            = Validation("EMAIL_TAKEN", "Email já cadastrado")
	ErrDocumentTaken         = Validation("DOCUMENT_TAKEN", "Documento já cadastrado")
	ErrPropertyHasInspection = Validation("PROPERTY_HAS_INSPECTIONS", "Não é possível excluir imóvel com vistorias")
	ErrPendingInspection     = Validation("PENDING_INSPECTION_EXISTS", "Já existe uma vistoria pendente para este imóvel")
	ErrOpenContest           = Validation("OPEN_CONTEST_EXISTS", "Já existe uma contestação aberta para esta vistoria")
	ErrInvalidTransition     = Validation("INVALID_STATUS_TRANSITION", "Transição de status inválida")
	ErrInspectionNotDone     = Validation("INSPECTION_NOT_COMPLETED", "Somente vistorias concluídas podem ser contestadas")
	ErrCannotDeleteSelf      = Validation("CANNOT_DELETE_SELF", "Não é possível excluir o próprio usuário")
	ErrInspectorInvalid      = Validation("INSPECTOR_INVALID", "Vistoriador inválido para esta empresa")
	ErrTooManyFiles          = Validation("TOO_MANY_FILES", "Número máximo de arquivos excedido")
	ErrFileTooLarge          = Validation("FILE_TOO_LARGE", "Arquivo excede o tamanho máximo permitido")
	ErrFileTypeNotAllowed    = Validation("FILE_TYPE_NOT_ALLOWED", "Tipo de arquivo não permitido")
	ErrNoFiles               = Validation("NO_FILES", "Nenhum arquivo enviado")
	ErrSyncUnsupported       = Validation("SYNC_UNSUPPORTED", "Operação de sincronização não suportada")
)
