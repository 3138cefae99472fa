package main

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Peauntmore/Meeting-Translator/internal/services"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func registerHandler(svc *services.AccountService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req registerRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "invalid request",
			})
		}

		// Boundary validation; the service re-checks the same rules.
		if violations := services.ValidateRegistration(req.Username, req.Email, req.Password); len(violations) > 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"errors":  violations,
			})
		}

		if _, err := svc.Register(c.Request().Context(), req.Username, req.Email, req.Password); err != nil {
			var vErr *services.ValidationError
			switch {
			case errors.As(err, &vErr):
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"errors":  vErr.Violations,
				})
			case errors.Is(err, services.ErrDuplicateEmail):
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "this email is already registered",
				})
			default:
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "registration failed",
				})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "registration successful, please check your email",
		})
	}
}

func verifyEmailHandler(svc *services.AccountService) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := c.Param("token")

		if _, err := svc.VerifyEmail(c.Request().Context(), token); err != nil {
			if errors.Is(err, services.ErrInvalidOrExpiredToken) {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "verification link is invalid or has expired",
				})
			}
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "verification failed",
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "email verified successfully",
		})
	}
}

func loginHandler(svc *services.AccountService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req loginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "invalid request",
			})
		}

		if !services.ValidEmail(services.NormalizeEmail(req.Email)) {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "email format is invalid",
			})
		}

		summary, err := svc.Login(c.Request().Context(), req.Email, req.Password)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrEmailNotVerified):
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "please verify your email first",
				})
			case errors.Is(err, services.ErrInvalidCredentials):
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"success": false,
					"message": "incorrect email or password",
				})
			default:
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "login failed",
				})
			}
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "login successful",
			"user":    summary,
		})
	}
}

// testEmailHandler sends a probe verification mail so deliverability can
// be checked without registering a throwaway account.
func testEmailHandler(svc *services.AccountService, mailer services.EmailSender, to string) echo.HandlerFunc {
	return func(c echo.Context) error {
		if to == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{
				"success": false,
				"message": "TEST_EMAIL_TO not configured",
			})
		}

		if err := mailer.SendVerificationEmail(c.Request().Context(), to, svc.VerifyURL("test-token")); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{
				"success": false,
				"message": "test email failed",
			})
		}

		return c.JSON(http.StatusOK, echo.Map{
			"success": true,
			"message": "test email sent, please check the inbox",
		})
	}
}

func registerAuthRoutes(api *echo.Group, svc *services.AccountService, mailer services.EmailSender, testEmailTo string) {
	api.POST("/register", registerHandler(svc))
	api.POST("/login", loginHandler(svc))
	api.GET("/verify-email/:token", verifyEmailHandler(svc))
	api.GET("/test-email", testEmailHandler(svc, mailer, testEmailTo))
}
