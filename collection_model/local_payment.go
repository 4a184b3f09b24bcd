package collection_model

// LocalPayment is a row of the device ledger. Timestamps are ISO strings and
// the legacy flag is 0/1, as written by the capture flow.
type LocalPayment struct {
	ID            string  `json:"id" gorm:"column:id;primaryKey"`
	ZoneID        uint    `json:"zona_cliente_id" gorm:"column:zona_cliente_id;index"`
	SaleRef       uint    `json:"docto_cc_id" gorm:"column:docto_cc_id"`
	PaidAt        string  `json:"fecha_hora_pago" gorm:"column:fecha_hora_pago;index"`
	Amount        float64 `json:"importe" gorm:"column:importe"`
	MethodCode    int     `json:"forma_cobro_id" gorm:"column:forma_cobro_id"`
	ClientName    *string `json:"nombre_cliente" gorm:"column:nombre_cliente"`
	SavedInLegacy int     `json:"guardado_en_legacy" gorm:"column:guardado_en_legacy"`
}

func (LocalPayment) TableName() string {
	return "PAGOS"
}
