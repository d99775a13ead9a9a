package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"vigilnet/internal/domain"
	"vigilnet/internal/engine"
	"vigilnet/internal/store"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Auth     AuthConfig
}

type apiErrorBody struct {
	Code    string         `json:"code" example:"duplicate_submission"`
	Message string         `json:"message" example:"mission already submitted"`
	Details map[string]any `json:"details,omitempty" jsonschema:"type=object,additionalProperties=true"`
}

// apiError models the error envelope shared by every endpoint.
type apiError struct {
	status int
	Body   apiErrorBody `json:"error"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Body.Message }

// New returns an HTTP handler exposing the Vigilnet API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v0"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	huma.DefaultArrayNullable = false
	// Override Huma errors to use the shared envelope.
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(status, "", msg, nil)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		if status == http.StatusUnprocessableEntity && strings.Contains(strings.ToLower(msg), "validation") {
			status = http.StatusBadRequest
		}
		var details map[string]any
		if len(errs) > 0 {
			details = map[string]any{"errors": errs}
		}
		return newAPIError(status, "", msg, details)
	}

	router := chi.NewRouter()
	router.Use(newAuthMiddleware(basePath, cfg.Auth))
	hcfg := huma.DefaultConfig("Vigilnet API", "0.1.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "" // custom Swagger UI below
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerDocs(router, basePath)
	registerHealth(group)
	registerAuth(group, cfg.Engine, cfg.Auth)
	registerHero(group, cfg.Engine)
	registerMissions(group, cfg.Engine)
	registerFeeds(group, cfg.Engine)
	registerMessages(group, cfg.Engine)
	registerFactions(group, cfg.Engine)
	registerDM(group, cfg.Engine)
	registerOpenAPI(router, api, basePath)

	return router, nil
}

func newAPIError(status int, code, message string, details map[string]any) huma.StatusError {
	if code == "" {
		code = defaultCodeForStatus(status)
	}
	return &apiError{
		status: status,
		Body: apiErrorBody{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

func handleError(err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case engine.IsValidation(err):
		return newAPIError(http.StatusBadRequest, "bad_request", err.Error(), nil)
	case errors.Is(err, engine.ErrDuplicateSubmission):
		return newAPIError(http.StatusConflict, "duplicate_submission", err.Error(), nil)
	case errors.Is(err, engine.ErrUsernameTaken):
		return newAPIError(http.StatusConflict, "username_taken", err.Error(), nil)
	case errors.Is(err, engine.ErrBadCredentials):
		return newAPIError(http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case errors.Is(err, engine.ErrNotFound):
		return newAPIError(http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, engine.ErrNoCycleState):
		return newAPIError(http.StatusInternalServerError, "cycle_not_configured", err.Error(), nil)
	case errors.Is(err, store.ErrUnavailable):
		return newAPIError(http.StatusServiceUnavailable, "store_unavailable", "data store unavailable", nil)
	default:
		return newAPIError(http.StatusInternalServerError, "internal_error", "internal error", map[string]any{"error": err.Error()})
	}
}

func defaultCodeForStatus(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "bad_request"
	case http.StatusUnauthorized:
		return "unauthorized"
	case http.StatusForbidden:
		return "forbidden"
	case http.StatusNotFound:
		return "not_found"
	case http.StatusConflict:
		return "conflict"
	case http.StatusInternalServerError:
		return "internal_error"
	default:
		return strings.ToLower(strings.ReplaceAll(http.StatusText(status), " ", "_"))
	}
}

func registerDocs(r chi.Router, basePath string) {
	r.Get("/docs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, swaggerHTML(basePath))
	})
}

func registerOpenAPI(r chi.Router, api huma.API, basePath string) {
	var spec []byte
	specPath := path.Join(basePath, "openapi.json")
	r.Get(specPath, func(w http.ResponseWriter, r *http.Request) {
		if spec == nil {
			oas := api.OpenAPI()
			applyAuthSecurity(oas, basePath)
			spec, _ = json.Marshal(oas)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(spec)
	})
}

func applyAuthSecurity(oas *huma.OpenAPI, basePath string) {
	if oas == nil {
		return
	}
	if oas.Components == nil {
		oas.Components = &huma.Components{}
	}
	if oas.Components.SecuritySchemes == nil {
		oas.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	oas.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
	}
	security := []map[string][]string{{"bearerAuth": {}}}
	oas.Security = security
	open := map[string]bool{
		path.Join("/", basePath, "health"):        true,
		path.Join("/", basePath, "auth/login"):    true,
		path.Join("/", basePath, "auth/register"): true,
	}
	for route, item := range oas.Paths {
		for _, op := range []*huma.Operation{
			item.Get, item.Put, item.Post, item.Delete, item.Options, item.Head, item.Patch, item.Trace,
		} {
			if op == nil {
				continue
			}
			if open[route] {
				op.Security = []map[string][]string{}
				continue
			}
			op.Security = security
		}
	}
}

func swaggerHTML(basePath string) string {
	specURL := path.Join("/", path.Join(basePath, "openapi.json"))
	return fmt.Sprintf(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1"/>
    <title>Vigilnet API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js" crossorigin></script>
    <script>
      window.onload = () => {
        SwaggerUIBundle({
          url: '%s',
          dom_id: '#swagger-ui'
        });
      };
    </script>
    <p style="padding: 1rem; font-family: sans-serif; color: #444;">
      Authenticate with Authorization: Bearer &lt;token&gt;.
    </p>
  </body>
</html>`, specURL)
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body map[string]string `json:"body"`
	}, error) {
		return &struct {
			Body map[string]string `json:"body"`
		}{Body: map[string]string{"status": "ok"}}, nil
	})
}

func registerAuth(api huma.API, e engine.Engine, auth AuthConfig) {
	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/auth/register",
		Summary:       "Register a new player",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusConflict,
			http.StatusServiceUnavailable,
		},
	}, func(ctx context.Context, input *struct {
		Body RegisterRequest `json:"body"`
	}) (*struct {
		Body SessionResponse `json:"body"`
	}, error) {
		hero, err := e.Register(ctx, engine.RegisterOptions{
			Username:     input.Body.Username,
			PasswordHash: input.Body.PasswordHash,
			HeroName:     input.Body.HeroName,
			Class:        input.Body.Class,
			Skills:       input.Body.Skills,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return sessionFor(e, auth, hero)
	})

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Summary:     "Log in",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusServiceUnavailable,
		},
	}, func(ctx context.Context, input *struct {
		Body LoginRequest `json:"body"`
	}) (*struct {
		Body SessionResponse `json:"body"`
	}, error) {
		hero, err := e.Login(ctx, input.Body.Username, input.Body.PasswordHash)
		if err != nil {
			return nil, handleError(err)
		}
		return sessionFor(e, auth, hero)
	})
}

func sessionFor(e engine.Engine, auth AuthConfig, hero domain.Hero) (*struct {
	Body SessionResponse `json:"body"`
}, error) {
	role := rolePlayer
	if e.Config != nil && e.Config.IsDM(hero.Username) {
		role = roleDM
	}
	token, err := issueToken(auth, hero.Username, hero.HeroName, role, e.Now())
	if err != nil {
		return nil, handleError(err)
	}
	return &struct {
		Body SessionResponse `json:"body"`
	}{Body: SessionResponse{
		Token:    token,
		Username: hero.Username,
		HeroName: hero.HeroName,
		Role:     role,
	}}, nil
}

func registerHero(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-hero",
		Method:      http.MethodGet,
		Path:        "/hero",
		Summary:     "Current player's character sheet",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body HeroResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		hero, err := e.Hero(ctx, p.Username)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body HeroResponse `json:"body"`
		}{Body: heroResponse(hero)}, nil
	})
}

func registerMissions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-missions",
		Method:      http.MethodGet,
		Path:        "/missions",
		Summary:     "List visible missions with the player's state",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []MissionResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		views, err := e.ListMissions(ctx, p.Username)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []MissionResponse `json:"body"`
		}{Body: mapMissions(views)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "mission-questions",
		Method:      http.MethodGet,
		Path:        "/missions/{mission_id}/questions",
		Summary:     "Mission questions with answer options",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		MissionID string `path:"mission_id"`
	}) (*struct {
		Body []QuestionResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		qs, err := e.MissionQuestions(ctx, input.MissionID)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []QuestionResponse `json:"body"`
		}{Body: mapQuestions(qs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "submit-mission",
		Method:        http.MethodPost,
		Path:          "/missions/{mission_id}/submissions",
		Summary:       "Submit mission answers",
		DefaultStatus: http.StatusCreated,
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusNotFound,
			http.StatusConflict,
		},
	}, func(ctx context.Context, input *struct {
		MissionID string               `path:"mission_id"`
		Body      SubmitMissionRequest `json:"body"`
	}) (*struct {
		Body SubmissionResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		sub, err := e.SubmitMission(ctx, engine.SubmitOptions{
			Username:  p.Username,
			HeroName:  p.HeroName,
			MissionID: input.MissionID,
			Answers:   input.Body.Answers,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SubmissionResponse `json:"body"`
		}{Body: submissionResponse(sub)}, nil
	})
}

func registerFeeds(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "get-feed",
		Method:      http.MethodGet,
		Path:        "/feeds/{feed}",
		Summary:     "Visible posts of one feed, newest first",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Feed string `path:"feed"`
	}) (*struct {
		Body []PostResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		posts, err := e.Feed(ctx, input.Feed)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []PostResponse `json:"body"`
		}{Body: mapPosts(posts)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "create-post",
		Method:        http.MethodPost,
		Path:          "/posts",
		Summary:       "Publish a feed post",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body CreatePostRequest `json:"body"`
	}) (*struct {
		Body PostResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		post, err := e.CreatePost(ctx, engine.PostOptions{
			Feed:         input.Body.Feed,
			PostedBy:     p.HeroName,
			PostedByType: input.Body.PostedByType,
			Title:        input.Body.Title,
			ImageURL:     input.Body.ImageURL,
			Body:         input.Body.Body,
		})
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body PostResponse `json:"body"`
		}{Body: postResponse(post)}, nil
	})
}

func registerMessages(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "inbox",
		Method:      http.MethodGet,
		Path:        "/inbox",
		Summary:     "Message threads, most recently active first",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ThreadResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		threads, err := e.Inbox(ctx, p.HeroName)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []ThreadResponse `json:"body"`
		}{Body: mapThreads(threads)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-thread",
		Method:      http.MethodGet,
		Path:        "/threads/{contact}",
		Summary:     "Conversation with one contact, oldest first",
		Errors:      []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Contact string `path:"contact"`
	}) (*struct {
		Body []MessageResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		msgs, err := e.Thread(ctx, p.HeroName, input.Contact)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []MessageResponse `json:"body"`
		}{Body: mapMessages(msgs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "send-message",
		Method:        http.MethodPost,
		Path:          "/messages",
		Summary:       "Send a direct message",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body SendMessageRequest `json:"body"`
	}) (*struct {
		Body MessageResponse `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		msg, err := e.SendMessage(ctx, p.HeroName, input.Body.To, input.Body.Body)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body MessageResponse `json:"body"`
		}{Body: messageResponse(msg)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "list-contacts",
		Method:      http.MethodGet,
		Path:        "/contacts",
		Summary:     "Saved contacts",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []string `json:"body"`
	}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		contacts, err := e.Contacts(ctx, p.HeroName)
		if err != nil {
			return nil, handleError(err)
		}
		if contacts == nil {
			contacts = []string{}
		}
		return &struct {
			Body []string `json:"body"`
		}{Body: contacts}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "add-contact",
		Method:        http.MethodPost,
		Path:          "/contacts",
		Summary:       "Save a contact",
		DefaultStatus: http.StatusCreated,
		Errors:        []int{http.StatusBadRequest, http.StatusUnauthorized},
	}, func(ctx context.Context, input *struct {
		Body AddContactRequest `json:"body"`
	}) (*struct{}, error) {
		p, authErr := requirePrincipal(ctx)
		if authErr != nil {
			return nil, authErr
		}
		if err := e.AddContact(ctx, p.HeroName, input.Body.ContactName); err != nil {
			return nil, handleError(err)
		}
		return &struct{}{}, nil
	})
}

func registerFactions(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "list-factions",
		Method:      http.MethodGet,
		Path:        "/factions",
		Summary:     "List factions",
		Errors:      []int{http.StatusUnauthorized},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []FactionResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		factions, err := e.ListFactions(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []FactionResponse `json:"body"`
		}{Body: mapFactions(factions)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "get-faction",
		Method:      http.MethodGet,
		Path:        "/factions/{name}",
		Summary:     "Get one faction",
		Errors:      []int{http.StatusUnauthorized, http.StatusNotFound},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct {
		Body FactionResponse `json:"body"`
	}, error) {
		if _, authErr := requirePrincipal(ctx); authErr != nil {
			return nil, authErr
		}
		f, err := e.GetFaction(ctx, input.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body FactionResponse `json:"body"`
		}{Body: factionResponse(f)}, nil
	})
}

func registerDM(api huma.API, e engine.Engine) {
	huma.Register(api, huma.Operation{
		OperationID: "dm-list-submissions",
		Method:      http.MethodGet,
		Path:        "/dm/submissions",
		Summary:     "All mission submissions",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []SubmissionResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		subs, err := e.ListSubmissions(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []SubmissionResponse `json:"body"`
		}{Body: mapSubmissions(subs)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-resolve-submission",
		Method:      http.MethodPatch,
		Path:        "/dm/submissions/{submission_id}",
		Summary:     "Override or resolve a submission",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusNotFound,
		},
	}, func(ctx context.Context, input *struct {
		SubmissionID string                   `path:"submission_id"`
		Body         ResolveSubmissionRequest `json:"body"`
	}) (*struct {
		Body SubmissionResponse `json:"body"`
	}, error) {
		p, authErr := requireDM(ctx)
		if authErr != nil {
			return nil, authErr
		}
		opts := engine.ResolveOptions{
			SubmissionID: input.SubmissionID,
			Resolved:     input.Body.Resolved,
			ActorID:      p.Username,
		}
		if input.Body.Override != nil {
			bucket, ok := domain.ParseBucket(*input.Body.Override)
			if !ok {
				return nil, newAPIError(http.StatusBadRequest, "bad_request", "override must be a, b, c or empty", nil)
			}
			opts.Override = &bucket
		}
		sub, err := e.ResolveSubmission(ctx, opts)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SubmissionResponse `json:"body"`
		}{Body: submissionResponse(sub)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-get-cycle",
		Method:      http.MethodGet,
		Path:        "/dm/cycle",
		Summary:     "Cycle clock state",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body CycleResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		state, _, err := e.CycleState(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		cycleID, err := e.CurrentCycleID(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CycleResponse `json:"body"`
		}{Body: CycleResponse{Current: state.Current, Start: state.Start, CycleID: cycleID}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-advance-cycle",
		Method:      http.MethodPost,
		Path:        "/dm/cycle/advance",
		Summary:     "Advance the cycle clock",
		Errors: []int{
			http.StatusUnauthorized,
			http.StatusForbidden,
			http.StatusInternalServerError,
		},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body CycleResponse `json:"body"`
	}, error) {
		p, authErr := requireDM(ctx)
		if authErr != nil {
			return nil, authErr
		}
		state, err := e.AdvanceCycle(ctx, p.Username)
		if err != nil {
			return nil, handleError(err)
		}
		cycleID, err := e.CurrentCycleID(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body CycleResponse `json:"body"`
		}{Body: CycleResponse{Current: state.Current, Start: state.Start, CycleID: cycleID}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-reputation-grid",
		Method:      http.MethodGet,
		Path:        "/dm/reputation",
		Summary:     "Full hero-faction reputation grid",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []ReputationResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		entries, err := e.ReputationGrid(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body []ReputationResponse `json:"body"`
		}{Body: mapReputation(entries)}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-set-reputation",
		Method:      http.MethodPut,
		Path:        "/dm/reputation",
		Summary:     "Set one hero-faction reputation level",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		Body SetReputationRequest `json:"body"`
	}) (*struct {
		Body ReputationResponse `json:"body"`
	}, error) {
		p, authErr := requireDM(ctx)
		if authErr != nil {
			return nil, authErr
		}
		level, ok := domain.ParseRepLevel(input.Body.Level)
		if !ok {
			return nil, newAPIError(http.StatusBadRequest, "bad_request", "invalid reputation level", nil)
		}
		err := e.SetReputation(ctx, input.Body.HeroName, input.Body.FactionName, level, p.Username)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body ReputationResponse `json:"body"`
		}{Body: ReputationResponse{
			HeroName:    input.Body.HeroName,
			FactionName: input.Body.FactionName,
			Level:       string(level),
		}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-sync-player-reputation",
		Method:      http.MethodPost,
		Path:        "/dm/reputation/players/{hero}",
		Summary:     "Fill missing faction entries for one hero",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		Hero string `path:"hero"`
	}) (*struct {
		Body SyncReputationResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		added, err := e.EnsureReputationForPlayer(ctx, input.Hero)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SyncReputationResponse `json:"body"`
		}{Body: SyncReputationResponse{Added: added}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-sync-faction-reputation",
		Method:      http.MethodPost,
		Path:        "/dm/reputation/factions/{name}",
		Summary:     "Fill missing hero entries for one faction",
		Errors: []int{
			http.StatusBadRequest,
			http.StatusUnauthorized,
			http.StatusForbidden,
		},
	}, func(ctx context.Context, input *struct {
		Name string `path:"name"`
	}) (*struct {
		Body SyncReputationResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		added, err := e.EnsureReputationForFaction(ctx, input.Name)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SyncReputationResponse `json:"body"`
		}{Body: SyncReputationResponse{Added: added}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID: "dm-sync-reputation",
		Method:      http.MethodPost,
		Path:        "/dm/reputation/sync",
		Summary:     "Fill missing hero-faction reputation pairs",
		Errors:      []int{http.StatusUnauthorized, http.StatusForbidden},
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body SyncReputationResponse `json:"body"`
	}, error) {
		if _, authErr := requireDM(ctx); authErr != nil {
			return nil, authErr
		}
		heroes, err := e.SyncReputation(ctx)
		if err != nil {
			return nil, handleError(err)
		}
		return &struct {
			Body SyncReputationResponse `json:"body"`
		}{Body: SyncReputationResponse{Added: heroes}}, nil
	})
}
