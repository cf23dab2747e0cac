package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/msomdec/movie-library/internal/domain"
	"github.com/msomdec/movie-library/internal/validation"
	"github.com/msomdec/movie-library/internal/view"
)

const yearFormatMessage = "Please enter a year in the format YYYY."

// RegisterForm is the registration form submission.
type RegisterForm struct {
	Email           string `form:"email" validate:"required,email"`
	Password        string `form:"password" validate:"required,min=4,max=20,maxbytes=72" message:"Your password must be between 4 and 20 characters long."`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password" message:"This password did not match the one in the password field."`
}

func parseRegisterForm(r *http.Request) RegisterForm {
	return RegisterForm{
		Email:           strings.TrimSpace(r.PostForm.Get("email")),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
	}
}

// LoginForm is the login form submission.
type LoginForm struct {
	Email    string `form:"email" validate:"required,email"`
	Password string `form:"password" validate:"required"`
}

func parseLoginForm(r *http.Request) LoginForm {
	return LoginForm{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
}

// MovieForm is the add-movie form submission.
type MovieForm struct {
	Title    string `form:"title" validate:"required"`
	Director string `form:"director" validate:"required"`
	Year     int    `form:"year" validate:"required,gte=1878" message:"Please enter a year in the format YYYY."`
}

// ExtendedMovieForm is the edit-movie form submission. List fields hold one
// entry per line.
type ExtendedMovieForm struct {
	MovieForm
	Cast        string `form:"cast"`
	Series      string `form:"series"`
	Tags        string `form:"tags"`
	Description string `form:"description"`
	VideoLink   string `form:"video_link" validate:"omitempty,url"`
}

// parseMovieForm reads the extended movie fields from the request and
// validates them. The raw values are returned for redisplay.
func parseMovieForm(r *http.Request, extended bool) (ExtendedMovieForm, view.MovieValues, validation.FieldErrors) {
	values := view.MovieValues{
		Title:       strings.TrimSpace(r.PostForm.Get("title")),
		Director:    strings.TrimSpace(r.PostForm.Get("director")),
		Year:        strings.TrimSpace(r.PostForm.Get("year")),
		Cast:        r.PostForm.Get("cast"),
		Series:      r.PostForm.Get("series"),
		Tags:        r.PostForm.Get("tags"),
		Description: r.PostForm.Get("description"),
		VideoLink:   strings.TrimSpace(r.PostForm.Get("video_link")),
	}

	form := ExtendedMovieForm{
		MovieForm: MovieForm{Title: values.Title, Director: values.Director},
	}
	errs := validation.FieldErrors{}

	if values.Year != "" {
		year, err := strconv.Atoi(values.Year)
		if err != nil || year < domain.MinMovieYear {
			errs.Add("year", yearFormatMessage)
		}
		form.Year = year
	}

	var structErrs validation.FieldErrors
	if extended {
		form.Cast = values.Cast
		form.Series = values.Series
		form.Tags = values.Tags
		form.Description = values.Description
		form.VideoLink = values.VideoLink
		structErrs = validation.Struct(&form)
	} else {
		structErrs = validation.Struct(&form.MovieForm)
	}
	for field, msg := range structErrs {
		errs.Add(field, msg)
	}

	if len(errs) == 0 {
		return form, values, nil
	}
	return form, values, errs
}

// apply copies the form onto m. Fields the form does not carry are left alone.
func (f ExtendedMovieForm) apply(m *domain.Movie) {
	m.Title = f.Title
	m.Director = f.Director
	m.Year = f.Year
	m.Cast = domain.ParseStringList(f.Cast)
	m.Series = domain.ParseStringList(f.Series)
	m.Tags = domain.ParseStringList(f.Tags)
	m.Description = f.Description
	m.VideoLink = f.VideoLink
}
