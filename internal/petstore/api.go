package petstore

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/vitalvas/routedoc/mux"
	"github.com/vitalvas/routedoc/muxhandlers"
	"github.com/vitalvas/routedoc/openapi"
)

const maxPhotoSize = 10 << 20

// Error is the body of every failed request.
type Error struct {
	Message string `json:"message" openapi:"example=pet not found"`
}

type Health struct {
	Status string `json:"status" openapi:"example=ok"`
}

const statsSchema = `{
  "type": "object",
  "description": "Pet counters",
  "properties": {
    "total": {"type": "integer", "minimum": 0},
    "byStatus": {"type": "object", "additionalProperties": {"type": "integer"}}
  },
  "required": ["total", "byStatus"]
}`

// API serves the pet store over HTTP.
type API struct {
	store  *Store
	logger *slog.Logger
}

func New(store *Store, logger *slog.Logger) *API {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &API{store: store, logger: logger}
}

// Configure adds the shared schemas, examples and responses the routes
// refer to.
func Configure(cfg *openapi.Config) {
	if cfg.Schemas == nil {
		cfg.Schemas = make(map[string]openapi.SchemaProvider)
	}
	cfg.Schemas["Stats"] = openapi.JSONSchema(statsSchema)

	if cfg.Examples == nil {
		cfg.Examples = make(map[string]*openapi.Example)
	}
	cfg.Examples["rex"] = &openapi.Example{
		Summary: "A good dog",
		Value:   NewPet{Name: "Rex", Tag: "dog", Status: StatusAvailable},
	}

	if cfg.DefaultUnauthorizedResponse == nil {
		cfg.DefaultUnauthorizedResponse = &openapi.ResponseDoc{
			Description: "Missing or invalid credentials",
			Body:        &openapi.BodyDoc{Schema: openapi.TypeOf[Error]()},
		}
	}
}

// Register mounts the routes on r and documents them in spec. Write
// operations sit below Authenticate groups naming the "bearer" and "basic"
// providers; the admin routes accept "basic" only.
func (a *API) Register(r *mux.Router, spec *openapi.Spec) {
	spec.Router(r).
		Response(http.StatusInternalServerError, Error{})

	spec.Route(r.HandleFunc("/health", a.health).Methods(http.MethodGet)).
		OperationID("health").
		Summary("Liveness probe").
		Tags("system").
		Public().
		Response(http.StatusOK, Health{})

	writers := []openapi.SecurityRequirement{{"bearer": {}}, {"basic": {}}}

	pets := r.PathPrefix("/pets").Subrouter()
	spec.Router(pets).Tags("pets")

	spec.Route(pets.HandleFunc("", a.listPets).Methods(http.MethodGet)).
		OperationID("listPets").
		Summary("List pets").
		Public().
		QueryParam("status", Status(""), "Only pets with this status").
		QueryParam("tag", "", "Only pets with this tag").
		QueryParam("limit", 0, "Maximum number of pets").
		Response(http.StatusOK, []Pet{}).
		Response(http.StatusBadRequest, Error{})

	petWriters := pets.Authenticate("bearer", "basic")
	spec.Router(petWriters).Security(writers...)

	spec.Route(petWriters.HandleFunc("", a.createPet).Methods(http.MethodPost)).
		OperationID("createPet").
		Summary("Add a pet").
		Request(NewPet{}).
		RequestExample("rex", openapi.ExampleDoc{Shared: "rex"}).
		Response(http.StatusCreated, Pet{}).
		ResponseHeader(http.StatusCreated, "Location", openapi.HeaderDoc{
			Description: "URL of the new pet",
			Schema:      openapi.TypeOf[string](),
		}).
		Response(http.StatusBadRequest, Error{})

	itemRoute := pets.PathPrefix("/{id:uuid}")
	spec.Route(itemRoute).Response(http.StatusNotFound, Error{})
	item := itemRoute.Subrouter()

	spec.Route(item.HandleFunc("", a.getPet).Methods(http.MethodGet)).
		OperationID("getPet").
		Summary("Find a pet").
		Public().
		Response(http.StatusOK, Pet{})

	itemWriters := item.Authenticate("bearer", "basic")
	spec.Router(itemWriters).Security(writers...)

	spec.Route(itemWriters.HandleFunc("", a.updatePet).Methods(http.MethodPut)).
		OperationID("updatePet").
		Summary("Replace a pet").
		Request(NewPet{}).
		Response(http.StatusOK, Pet{}).
		Response(http.StatusBadRequest, Error{})

	spec.Route(itemWriters.HandleFunc("", a.deletePet).Methods(http.MethodDelete)).
		OperationID("deletePet").
		Summary("Remove a pet").
		Response(http.StatusNoContent, nil)

	spec.Route(itemWriters.HandleFunc("/photo", a.uploadPhoto).Methods(http.MethodPost)).
		OperationID("uploadPhoto").
		Summary("Attach a photo").
		Multipart(
			openapi.PartDoc{
				Name:         "photo",
				Schema:       openapi.TypeOf[[]byte](),
				Required:     true,
				ContentTypes: []string{"image/png", "image/jpeg"},
			},
			openapi.PartDoc{Name: "caption", Schema: openapi.TypeOf[string]()},
		).
		Response(http.StatusOK, Pet{}).
		Response(http.StatusBadRequest, Error{})

	adminRoute := r.PathPrefix("/admin")
	spec.Route(adminRoute).
		Tags("admin").
		Security(openapi.SecurityRequirement{"basic": {}})
	admin := adminRoute.Authenticate("basic")

	spec.Route(admin.HandleFunc("/stats", a.stats).Methods(http.MethodGet)).
		OperationID("stats").
		Summary("Pet counters").
		Response(http.StatusOK, openapi.SchemaRef("Stats"))
}

func (a *API) health(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, Health{Status: "ok"})
}

func (a *API) listPets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	f := Filter{
		Status: Status(q.Get("status")),
		Tag:    q.Get("tag"),
	}
	if f.Status != "" && !f.Status.valid() {
		writeError(w, http.StatusBadRequest, "unknown status "+string(f.Status))
		return
	}
	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		f.Limit = limit
	}

	mux.ResponseJSON(w, http.StatusOK, a.store.List(f))
}

func (a *API) createPet(w http.ResponseWriter, r *http.Request) {
	var in NewPet
	if err := mux.BindJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	p, err := a.store.Create(in)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	muxhandlers.LoggerFromContext(r.Context(), a.logger).Info("pet created",
		slog.String("id", p.ID),
		slog.String("principal", muxhandlers.PrincipalFromContext(r.Context())),
	)

	w.Header().Set("Location", "/pets/"+p.ID)
	mux.ResponseJSON(w, http.StatusCreated, p)
}

func (a *API) getPet(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.Get(mux.Vars(r)["id"])
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mux.ResponseJSON(w, http.StatusOK, p)
}

func (a *API) updatePet(w http.ResponseWriter, r *http.Request) {
	var in NewPet
	if err := mux.BindJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "malformed body: "+err.Error())
		return
	}

	p, err := a.store.Update(mux.Vars(r)["id"], in)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mux.ResponseJSON(w, http.StatusOK, p)
}

func (a *API) deletePet(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.store.Delete(id); err != nil {
		a.fail(w, r, err)
		return
	}

	muxhandlers.LoggerFromContext(r.Context(), a.logger).Info("pet deleted",
		slog.String("id", id),
		slog.String("principal", muxhandlers.PrincipalFromContext(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) uploadPhoto(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxPhotoSize); err != nil {
		writeError(w, http.StatusBadRequest, "malformed multipart body")
		return
	}

	file, header, err := r.FormFile("photo")
	if err != nil {
		writeError(w, http.StatusBadRequest, "photo part is required")
		return
	}
	_ = file.Close()

	p, err := a.store.SetPhoto(mux.Vars(r)["id"], header.Filename)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	mux.ResponseJSON(w, http.StatusOK, p)
}

func (a *API) stats(w http.ResponseWriter, _ *http.Request) {
	mux.ResponseJSON(w, http.StatusOK, a.store.Stats())
}

// fail maps store errors to responses.
func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, ErrNotFound.Error())
	case errors.Is(err, ErrInvalid):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		muxhandlers.LoggerFromContext(r.Context(), a.logger).Error("request failed", slog.Any("error", err))
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	mux.ResponseJSON(w, status, Error{Message: msg})
}
