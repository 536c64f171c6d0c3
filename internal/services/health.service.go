package services

type healthService struct{}

func NewHealthService() *healthService {
	return &healthService{}
}

func (h *healthService) Get() error {
	return nil
}
