package common

import (
	"errors"
	"fmt"
	"net/http"

	"logiq/service"

	"github.com/bwmarrin/discordgo"
)

var (
	// ErrModuleNotFound is returned when reloading a module the bot does not ship
	ErrModuleNotFound = errors.New("module not found")

	// ErrModuleNotLoaded is returned when reloading a module that is disabled in configuration
	ErrModuleNotLoaded = errors.New("module not loaded")

	// ErrMissingPermissions is returned when the platform refuses an action for lack of permissions
	ErrMissingPermissions = errors.New("missing permissions")
)

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to Discord user
	LogMessage  string // Internal message for logging
	Title       string
	Err         error // Underlying error
	User        bool  // caused by the caller, not logged as a failure
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for user-caused issues (validation, insufficient funds, etc)
func NewUserError(title, userMessage string) *BotError {
	return &BotError{
		Title:       title,
		UserMessage: userMessage,
		LogMessage:  userMessage,
		User:        true,
	}
}

// NewSystemError creates an error for system issues (database, unexpected state, etc)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		Title:       "Error",
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Err:         err,
	}
}

// userFacing maps service sentinels to the message shown to the caller
var userFacing = []struct {
	err     error
	title   string
	message string
}{
	{service.ErrPersistenceUnavailable, "Database Unavailable", "The database is currently unavailable. Please try again later."},
	{ErrMissingPermissions, "Error", "I don't have permission to do that"},
	{service.ErrInsufficientBalance, "Insufficient Balance", "You don't have enough coins for that."},
	{service.ErrInvalidAmount, "Invalid Amount", "Amount must be positive."},
	{service.ErrSelfTransfer, "Invalid Recipient", "You cannot pay yourself."},
	{service.ErrNotFound, "Not Found", "That item does not exist."},
	{service.ErrTicketLimit, "Too Many Tickets",
		fmt.Sprintf("You already have %d open tickets. Close one before opening another.", service.MaxOpenTickets)},
}

// IsUserError reports whether err is a caller mistake or a degraded-service condition rather than a failure
func IsUserError(err error) bool {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.User {
		return true
	}
	if errors.Is(err, service.ErrInvalidUpdate) {
		return true
	}
	for _, known := range userFacing {
		if errors.Is(err, known.err) {
			return true
		}
	}
	return false
}

// ErrorResponse renders err for the caller
func ErrorResponse(err error) *Response {
	var botErr *BotError
	if errors.As(err, &botErr) && botErr.User {
		return Private(ErrorEmbed(botErr.Title, botErr.UserMessage))
	}
	for _, known := range userFacing {
		if errors.Is(err, known.err) {
			return Private(ErrorEmbed(known.title, known.message))
		}
	}
	if errors.Is(err, service.ErrInvalidUpdate) {
		return Private(ErrorEmbed("Invalid Value", err.Error()))
	}
	if botErr != nil {
		return Private(ErrorEmbed(botErr.Title, botErr.UserMessage))
	}
	return Private(ErrorEmbed("Error", "Something went wrong. Please try again later."))
}

// IsPermanentDeliveryError reports whether a failed post will fail again on retry:
// a missing channel, access or permission, or any other 4xx except rate limiting.
func IsPermanentDeliveryError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrMissingPermissions) {
		return true
	}

	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownChannel,
			discordgo.ErrCodeUnknownGuild,
			discordgo.ErrCodeMissingAccess,
			discordgo.ErrCodeMissingPermissions,
			discordgo.ErrCodeCannotSendMessagesToThisUser:
			return true
		}
	}
	if restErr.Response == nil {
		return false
	}
	status := restErr.Response.StatusCode
	return status >= 400 && status < 500 && status != http.StatusTooManyRequests
}
