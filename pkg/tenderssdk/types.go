package tenderssdk

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// ============================================================================
// Auth
// ============================================================================

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// Identity is the claim carried by the access token, echoed by /auth/me.
type Identity struct {
	Subject int64  `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Role    string `json:"role"`
}

// ============================================================================
// Contracts
// ============================================================================

// Criteria are the /api/expiring query parameters. Zero numeric values are
// left to the server defaults.
type Criteria struct {
	Departements   []string
	Descripteurs   []string
	Max            int
	FallbackMonths *int
	HorizonMonths  *int
}

// ContractRecord is one awarded contract. Duree, Renouvellement and DateFin
// are only present when a linked notice resolved them.
type ContractRecord struct {
	IDWeb              string   `json:"idweb,omitempty"`
	ID                 string   `json:"id,omitempty"`
	Objet              string   `json:"objet,omitempty"`
	Departement        string   `json:"departement,omitempty"`
	Titulaire          string   `json:"titulaire,omitempty"`
	NomAcheteur        string   `json:"nomacheteur,omitempty"`
	DateParution       string   `json:"dateparution,omitempty"`
	URLAvis            string   `json:"url_avis,omitempty"`
	Donnees            string   `json:"donnees,omitempty"`
	DescripteurLibelle []string `json:"descripteur_libelle,omitempty"`
	TypeMarcheFacette  []string `json:"type_marche_facette,omitempty"`
	AnnonceLiee        string   `json:"annonce_lie,omitempty"`

	Duree          *int    `json:"duree,omitempty"`
	Renouvellement *string `json:"renouvellement,omitempty"`
	DateFin        *string `json:"datefin,omitempty"`
}

type ExpiringResponse struct {
	Rows []ContractRecord `json:"rows"`
}

// MarketCode is a descriptor code and its label.
type MarketCode struct {
	Code    string `json:"code"`
	Libelle string `json:"libelle"`
}

// ============================================================================
// Health
// ============================================================================

// StatusResponse is returned by /api/status. Uptime is in seconds.
type StatusResponse struct {
	OK     bool    `json:"ok"`
	Uptime float64 `json:"uptime"`
}

type PingResponse struct {
	Pong bool `json:"pong"`
}

type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
