package handler

type PushParams struct {
	Ref string `json:"ref"`
}

type RunParams struct {
	RunID int64 `param:"run_id"`
}

type ListRunsParams struct {
	Page int64 `query:"page"`
}

type CredentialParams struct {
	CredentialID int64  `param:"credential_id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Token        string `json:"token"`
}
