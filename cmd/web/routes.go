package main

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/AdamBeresnev/league-engine/internal/bracket"
	"github.com/AdamBeresnev/league-engine/internal/httputil"
	"github.com/AdamBeresnev/league-engine/internal/metrics"
	"github.com/AdamBeresnev/league-engine/internal/service"
	"github.com/AdamBeresnev/league-engine/internal/store"
	"github.com/AdamBeresnev/league-engine/views"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
)

type application struct {
	events    *service.EventService
	teams     *service.TeamService
	brackets  *service.BracketService
	matches   *service.MatchService
	standings *service.StandingsService
	registry  *prometheus.Registry
}

func newApplication(database *sqlx.DB, logger *slog.Logger, reg *prometheus.Registry) *application {
	st := store.NewLeagueStore()
	var m *metrics.Metrics
	if reg != nil {
		m = metrics.New(reg)
	}

	return &application{
		events:    service.NewEventService(database, st, logger),
		teams:     service.NewTeamService(database, st),
		brackets:  service.NewBracketService(database, st, logger),
		matches:   service.NewMatchService(database, st, logger, m, otel.Tracer("league-engine")),
		standings: service.NewStandingsService(database, st),
		registry:  reg,
	}
}

type scheduleInput struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	if app.registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{}))
	}

	r.Post("/events", func(w http.ResponseWriter, r *http.Request) {
		var in service.EventInput
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			httputil.BadRequest(w, "Invalid event", err)
			return
		}
		event, err := app.events.CreateEvent(r.Context(), in)
		if err != nil {
			httputil.Error(w, "Failed to create event", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, event)
	})

	r.Get("/events/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.URLParamUUID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "Invalid event ID", err)
			return
		}
		data, err := app.events.GetEvent(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get event", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, data)
	})

	r.Post("/events/{id}/brackets", func(w http.ResponseWriter, r *http.Request) {
		eventID, err := httputil.URLParamUUID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "Invalid event ID", err)
			return
		}
		var in service.BracketInput
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			httputil.BadRequest(w, "Invalid bracket", err)
			return
		}
		in.EventID = eventID

		data, err := app.brackets.CreateBracket(r.Context(), in)
		if err != nil {
			httputil.Error(w, "Failed to create bracket", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, data)
	})

	r.Post("/teams", func(w http.ResponseWriter, r *http.Request) {
		var in service.TeamInput
		if err := httputil.DecodeJSON(w, r, &in); err != nil {
			httputil.BadRequest(w, "Invalid team", err)
			return
		}
		team, err := app.teams.RegisterTeam(r.Context(), in)
		if err != nil {
			httputil.Error(w, "Failed to register team", err)
			return
		}
		httputil.WriteJSON(w, http.StatusCreated, team)
	})

	r.Get("/teams/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := httputil.URLParamUUID(r, "id")
		if err != nil {
			httputil.BadRequest(w, "Invalid team ID", err)
			return
		}
		team, err := app.teams.GetTeam(r.Context(), id)
		if err != nil {
			httputil.Error(w, "Failed to get team", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, team)
	})

	r.Route("/brackets/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid bracket ID", err)
				return
			}
			data, err := app.brackets.GetBracket(r.Context(), id, false)
			if err != nil {
				httputil.Error(w, "Failed to get bracket", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, data)
		})

		r.Get("/matches", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid bracket ID", err)
				return
			}
			includeHidden := r.URL.Query().Get("include_hidden") == "true"
			matches, err := app.matches.ListMatches(r.Context(), id, includeHidden)
			if err != nil {
				httputil.Error(w, "Failed to list matches", err)
				return
			}
			if matches == nil {
				matches = []bracket.Match{}
			}
			httputil.WriteJSON(w, http.StatusOK, matches)
		})

		// The public fragment never shows hidden matches.
		r.Get("/view", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid bracket ID", err)
				return
			}
			data, err := app.brackets.GetBracket(r.Context(), id, false)
			if err != nil {
				httputil.Error(w, "Failed to get bracket", err)
				return
			}
			v := views.PrepareBracketView(data.Bracket, data.Teams, data.Matches)
			if err := views.Render(w, r, views.MatchList(v)); err != nil {
				slog.Error("failed to render match list", "bracket_id", id, "error", err)
			}
		})

		r.Get("/standings", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid bracket ID", err)
				return
			}
			table, err := app.standings.GetStandings(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get standings", err)
				return
			}
			if r.URL.Query().Get("format") == "html" {
				if err := views.Render(w, r, views.StandingsTable(table.Rows, table.Teams)); err != nil {
					slog.Error("failed to render standings", "bracket_id", id, "error", err)
				}
				return
			}
			httputil.WriteJSON(w, http.StatusOK, table)
		})
	})

	r.Route("/matches/{id}", func(r chi.Router) {
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			m, err := app.matches.GetMatch(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to get match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, m)
		})

		r.Post("/start", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			m, err := app.matches.StartMatch(r.Context(), id)
			if err != nil {
				httputil.Error(w, "Failed to start match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, m)
		})

		r.Post("/complete", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			var in bracket.ResultInput
			if err := httputil.DecodeJSON(w, r, &in); err != nil {
				httputil.BadRequest(w, "Invalid result", err)
				return
			}
			outcome, err := app.matches.CompleteMatch(r.Context(), id, in)
			if err != nil {
				httputil.Error(w, "Failed to complete match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, outcome)
		})

		r.Put("/schedule", func(w http.ResponseWriter, r *http.Request) {
			id, err := httputil.URLParamUUID(r, "id")
			if err != nil {
				httputil.BadRequest(w, "Invalid match ID", err)
				return
			}
			var in scheduleInput
			if err := httputil.DecodeJSON(w, r, &in); err != nil {
				httputil.BadRequest(w, "Invalid schedule", err)
				return
			}
			m, err := app.matches.AssignSchedule(r.Context(), id, in.ScheduledAt)
			if err != nil {
				httputil.Error(w, "Failed to assign schedule", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, m)
		})
	})

	return r
}
