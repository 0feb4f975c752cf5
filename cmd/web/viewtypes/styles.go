package viewtypes

// ============================================================================
// SHARED CSS CLASS CONSTANTS
// Class strings from static/dist/main.css used across template files.
// ============================================================================

// PageHeading is the main h1 heading style for top-level pages.
var PageHeading = "page-heading"

// SubHeading is for secondary headings (h2 level) within pages.
var SubHeading = "sub-heading"

// Card is the bordered panel used for posts, bulletins and forms.
var Card = "card"

// FormClass lays out stacked labels and inputs.
var FormClass = "form-stack"

// InputClass is the standard text input styling.
var InputClass = "input"

// PrimaryButton is the filled call-to-action button.
var PrimaryButton = "btn btn-primary"

// GhostButtonSm is a small outlined button.
var GhostButtonSm = "btn btn-ghost btn-sm"

// MutedText is secondary text such as dates and counts.
var MutedText = "muted"

// ErrorText is the inline form error slot.
var ErrorText = "form-error"
