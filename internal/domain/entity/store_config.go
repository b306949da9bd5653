package entity

// StoreConfigID es la única fila permitida en la tabla configuracion.
const StoreConfigID = 1

// StoreConfig datos de la tienda impresos en el ticket.
type StoreConfig struct {
	ID            int
	StoreName     string
	Address       string
	Phone         string
	TicketMessage string
}

// DefaultStoreConfig valores con los que se crea la configuración en la primera lectura.
func DefaultStoreConfig() StoreConfig {
	return StoreConfig{
		ID:            StoreConfigID,
		StoreName:     "Mi Tienda",
		Address:       "Dirección no configurada",
		Phone:         "",
		TicketMessage: "¡Gracias por su compra!",
	}
}
