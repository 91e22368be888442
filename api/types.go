// Package api holds the HTTP contract of the booking service: the embedded
// OpenAPI document and the request/response bodies it describes.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

type ErrorCode string

const (
	ValidationErrorCode ErrorCode = "validation_error"
	SlotInactiveCode    ErrorCode = "slot_inactive"
	SeatConflictCode    ErrorCode = "seat_conflict"
	CutoffViolationCode ErrorCode = "cutoff_violation"
	NotFoundCode        ErrorCode = "not_found"
	SlotOverlapCode     ErrorCode = "slot_overlap"
	UnauthorizedCode    ErrorCode = "unauthorized"
	ForbiddenCode       ErrorCode = "forbidden"
	RateLimitedCode     ErrorCode = "rate_limited"
	InternalErrorCode   ErrorCode = "internal_error"
)

type BookingStatus string

const (
	BOOKED    BookingStatus = "BOOKED"
	CANCELLED BookingStatus = "CANCELLED"
)

type ErrorResponse struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

type ValidationErrorResponse struct {
	Code             ErrorCode         `json:"code"`
	Message          string            `json:"message"`
	RequestId        string            `json:"requestId"`
	Timestamp        time.Time         `json:"timestamp"`
	ValidationErrors []ValidationError `json:"validationErrors"`
}

type Metadata struct {
	CurrentPage  int `json:"currentPage"`
	FirstPage    int `json:"firstPage"`
	LastPage     int `json:"lastPage"`
	PageSize     int `json:"pageSize"`
	TotalRecords int `json:"totalRecords"`
}

type PaginationParams struct {
	Page     *int `json:"page,omitempty" validate:"omitempty,min=1"`
	PageSize *int `json:"pageSize,omitempty" validate:"omitempty,min=1,max=100"`
}

type Seat struct {
	Row    int `json:"row" validate:"min=1"`
	Number int `json:"number" validate:"min=1"`
}

type CreateBookingRequest struct {
	SlotId int    `json:"slotId" validate:"required,min=1"`
	Seats  []Seat `json:"seats" validate:"required,min=1,dive"`
}

type BookingResponse struct {
	Id           int           `json:"id"`
	SlotId       int           `json:"slotId"`
	Status       BookingStatus `json:"status"`
	Seats        []Seat        `json:"seats"`
	TotalPrice   string        `json:"totalPrice"`
	SlotDateTime time.Time     `json:"slotDateTime"`
	CreatedAt    time.Time     `json:"createdAt"`
}

type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
	Metadata Metadata          `json:"metadata"`
}

type CancelBookingResponse struct {
	Id     int           `json:"id"`
	Status BookingStatus `json:"status"`
}

type BookedSeatsResponse struct {
	SlotId int    `json:"slotId"`
	Seats  []Seat `json:"seats"`
}

type SlotRequest struct {
	MovieId  int       `json:"movieId" validate:"required,min=1"`
	CinemaId int       `json:"cinemaId" validate:"required,min=1"`
	Language string    `json:"language" validate:"required,max=50"`
	DateTime time.Time `json:"dateTime" validate:"required"`
	Price    string    `json:"price" validate:"required,price"`
}

type SlotResponse struct {
	Id         int       `json:"id"`
	MovieId    int       `json:"movieId"`
	MovieName  string    `json:"movieName,omitempty"`
	MovieSlug  string    `json:"movieSlug,omitempty"`
	CinemaId   int       `json:"cinemaId"`
	CinemaName string    `json:"cinemaName,omitempty"`
	Language   string    `json:"language"`
	DateTime   time.Time `json:"dateTime"`
	EndsAt     time.Time `json:"endsAt"`
	Price      string    `json:"price"`
}

type SlotTime struct {
	Id       int       `json:"id"`
	DateTime time.Time `json:"dateTime"`
	Language string    `json:"language"`
	Price    string    `json:"price"`
}

type GetMoviesParams struct {
	PaginationParams
	Language    *string             `json:"language,omitempty" validate:"omitempty,max=100"`
	Genre       *string             `json:"genre,omitempty" validate:"omitempty,max=100"`
	ReleaseDate *openapi_types.Date `json:"releaseDate,omitempty"`
}

type MovieSummary struct {
	Id              int                `json:"id"`
	Name            string             `json:"name"`
	Slug            string             `json:"slug"`
	PosterUrl       string             `json:"posterUrl,omitempty"`
	DurationMinutes int                `json:"durationMinutes"`
	ReleaseDate     openapi_types.Date `json:"releaseDate"`
	Languages       []string           `json:"languages"`
	Genres          []string           `json:"genres"`
}

type MovieDetailResponse struct {
	MovieSummary
	Description string `json:"description"`
}

type MovieListResponse struct {
	Movies   []MovieSummary `json:"movies"`
	Metadata Metadata       `json:"metadata"`
}

type GetMovieSlotsParams struct {
	Date *openapi_types.Date `json:"date,omitempty"`
}

type CinemaSlots struct {
	Cinema CinemaSummary `json:"cinema"`
	Slots  []SlotTime    `json:"slots"`
}

type MovieSlotsResponse struct {
	Movie   MovieSummary       `json:"movie"`
	Date    openapi_types.Date `json:"date"`
	Cinemas []CinemaSlots      `json:"cinemas"`
}

type GetCinemasParams struct {
	PaginationParams
	City *string `json:"city,omitempty" validate:"omitempty,max=100"`
}

type CinemaSummary struct {
	Id       int    `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Location string `json:"location"`
	City     string `json:"city"`
}

type CinemaListResponse struct {
	Cinemas  []CinemaSummary `json:"cinemas"`
	Metadata Metadata        `json:"metadata"`
}

type MovieRef struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type MovieSlots struct {
	Movie MovieRef   `json:"movie"`
	Slots []SlotTime `json:"slots"`
}

type CinemaSlotsResponse struct {
	Cinema CinemaSummary `json:"cinema"`
	Movies []MovieSlots  `json:"movies"`
}

type RegisterRequest struct {
	FirstName string `json:"firstName" validate:"required,alpha,max=50"`
	LastName  string `json:"lastName" validate:"required,alpha,max=50"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,password"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Access    string    `json:"access"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type UserResponse struct {
	Id        int       `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	IsStaff   bool      `json:"isStaff"`
	CreatedAt time.Time `json:"createdAt"`
}

type SystemInfo struct {
	Version     string `json:"version"`
	Environment string `json:"environment"`
}

type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
