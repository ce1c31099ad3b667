package domain

import "time"

type Review struct {
	ID        string    `json:"_id"`
	Author    string    `json:"author"`
	Comment   string    `json:"comment"`
	Rating    int       `json:"rating"`
	Hotel     string    `json:"hotel"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReviewInput is the request body of a new review. Hotel comes from the
// route, never from the body.
type ReviewInput struct {
	Author  string `json:"author" validate:"required"`
	Comment string `json:"comment" validate:"required"`
	Rating  *int   `json:"rating" validate:"required,min=1,max=5"`
	Hotel   string `json:"hotel" validate:"required"`
}

func (in ReviewInput) Validate() error { return validateStruct("review", in) }

func NewReview(in ReviewInput, now time.Time) (Review, error) {
	if err := in.Validate(); err != nil {
		return Review{}, err
	}
	return Review{
		Author:    in.Author,
		Comment:   in.Comment,
		Rating:    *in.Rating,
		Hotel:     in.Hotel,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
