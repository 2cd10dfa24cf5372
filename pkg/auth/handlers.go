package auth

import (
	"encoding/base64"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	echologger "github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/logger"

	"github.com/EliasObeid9-02/library-system/pkg/errcodes"
	"github.com/EliasObeid9-02/library-system/pkg/models"
)

type handler struct {
	authService *Service
}

type LoginResponse struct {
	Token  string       `json:"token"`
	Expiry time.Time    `json:"expiry"`
	User   *models.User `json:"user"`
}

// login exchanges Basic credentials for a token. The decoded credentials are
// "username:<username>:<password>", "email:<email>:<password>" or the plain
// "<username>:<password>".
func (h *handler) login(c echo.Context) error {
	ctx := c.Request().Context()

	scheme, identifier, password, err := parseBasicHeader(c.Request().Header.Get(echo.HeaderAuthorization))
	if err != nil {
		return err
	}

	user, err := h.authService.Authenticate(ctx, scheme, identifier, password)
	if err != nil {
		return err
	}

	token, row, err := h.authService.IssueToken(ctx, user)
	if err != nil {
		return err
	}

	echologger.FromEchoContext(c).Info("user logged in", logger.Data{"user_id": user.ID, "scheme": scheme})

	return errors.WithStack(c.JSON(http.StatusOK, LoginResponse{
		Token:  token,
		Expiry: row.ExpiresAt,
		User:   user,
	}))
}

func (h *handler) logout(c echo.Context) error {
	token := TokenFromContext(c)
	if token == nil {
		return errcodes.Unauthorized("")
	}
	if err := h.authService.RevokeToken(c.Request().Context(), token.ID); err != nil {
		return err
	}
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) logoutAll(c echo.Context) error {
	user := UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("")
	}
	if _, err := h.authService.RevokeAllTokens(c.Request().Context(), user.ID); err != nil {
		return err
	}
	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) me(c echo.Context) error {
	user := UserFromContext(c)
	if user == nil {
		return errcodes.Unauthorized("")
	}
	return errors.WithStack(c.JSON(http.StatusOK, user))
}

func parseBasicHeader(header string) (Scheme, string, string, error) {
	parts := strings.Fields(header)
	if len(parts) == 0 || !strings.EqualFold(parts[0], "basic") {
		return "", "", "", errcodes.Unauthorized("")
	}
	if len(parts) == 1 {
		return "", "", "", errcodes.AuthenticationFailed("Invalid basic header. No credentials provided.")
	}
	if len(parts) > 2 {
		return "", "", "", errcodes.AuthenticationFailed("Invalid basic header. Credentials string should not contain spaces.")
	}

	malformed := errcodes.AuthenticationFailed("Invalid basic header. Credentials not correctly base64 encoded.")
	decoded, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", "", "", malformed
	}

	credentials := string(decoded)
	if fields := strings.SplitN(credentials, ":", 3); len(fields) == 3 {
		switch Scheme(strings.ToLower(fields[0])) {
		case SchemeUsername:
			return SchemeUsername, fields[1], fields[2], nil
		case SchemeEmail:
			return SchemeEmail, fields[1], fields[2], nil
		}
	}

	fields := strings.SplitN(credentials, ":", 2)
	if len(fields) != 2 {
		return "", "", "", malformed
	}
	return SchemeUsername, fields[0], fields[1], nil
}
