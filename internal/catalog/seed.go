package catalog

// SeedClients returns the built-in client catalog. It is the fallback list
// used when no provider can be reached. Each call returns a fresh slice.
func SeedClients() []Client {
	return []Client{
		{ID: "CLI-001", GivenNames: "María José", Surnames: "González Pérez", NationalID: "12.345.678", Phone: "+54 9 11 4455-1020", Email: "mjgonzalez@example.com", RiskTier: TierGreen, CreditCeiling: 5_000_000},
		{ID: "CLI-002", GivenNames: "Juan Carlos", Surnames: "Rodríguez", NationalID: "20.987.654", Phone: "+54 9 11 3322-8890", Email: "jcrodriguez@example.com", RiskTier: TierYellow, CreditCeiling: 2_500_000},
		{ID: "CLI-003", GivenNames: "Ana Lucía", Surnames: "Fernández Soto", NationalID: "31.222.333", Phone: "+54 9 351 600-1122", Email: "alfernandez@example.com", RiskTier: TierGreen, CreditCeiling: 8_000_000},
		{ID: "CLI-004", GivenNames: "Pedro", Surnames: "Martínez Ruiz", NationalID: "27.444.555", Phone: "+54 9 261 455-7788", Email: "pmartinez@example.com", RiskTier: TierRed, CreditCeiling: 800_000},
		{ID: "CLI-005", GivenNames: "Lucía", Surnames: "Herrera", NationalID: "35.101.202", Phone: "+54 9 341 700-3344", Email: "lherrera@example.com", RiskTier: TierGreen, CreditCeiling: 3_500_000},
		{ID: "CLI-006", GivenNames: "Carlos Alberto", Surnames: "Díaz", NationalID: "18.606.707", Phone: "+54 9 381 500-9900", Email: "cadiaz@example.com", RiskTier: TierBlacklist, CreditCeiling: 0},
		{ID: "CLI-007", GivenNames: "Sofía", Surnames: "Castro Medina", NationalID: "40.808.909", Phone: "+54 9 299 410-5566", Email: "scastro@example.com", RiskTier: TierYellow, CreditCeiling: 1_800_000},
		{ID: "CLI-008", GivenNames: "Miguel Ángel", Surnames: "Torres", NationalID: "29.313.414", Phone: "+54 9 11 6020-7711", Email: "matorres@example.com", RiskTier: TierRed, CreditCeiling: 1_200_000},
	}
}

// SeedArticles returns the built-in article catalog. Articles without an
// option table get one derived by the financing rule at load time.
func SeedArticles() []Article {
	return []Article{
		{
			ID: "ART-001", Name: "Televisor LED 50\"", Category: "Televisores", CashPrice: 1_800_000,
			Options: []InstallmentOption{
				row(6, Monthly, 2_178_000),
				row(12, Biweekly, 2_178_000),
				row(12, Monthly, 2_556_000),
				row(18, Monthly, 2_934_000),
			},
		},
		{
			ID: "ART-002", Name: "Heladera No Frost 400L", Category: "Línea blanca", CashPrice: 2_400_000,
			Options: []InstallmentOption{
				row(12, Biweekly, 2_904_000),
				row(12, Monthly, 3_408_000),
				row(18, Monthly, 3_912_000),
				row(24, Monthly, 4_416_000),
			},
		},
		{
			ID: "ART-003", Name: "Lavarropas automático 8kg", Category: "Línea blanca", CashPrice: 1_500_000,
			Options: []InstallmentOption{
				row(6, Monthly, 1_815_000),
				row(12, Biweekly, 1_815_000),
				row(12, Monthly, 2_130_000),
				row(18, Monthly, 2_445_000),
				row(24, Monthly, 2_760_000),
			},
		},
		{
			ID: "ART-004", Name: "Celular gama media 128GB", Category: "Celulares", CashPrice: 650_000,
			Options: []InstallmentOption{
				row(6, Monthly, 786_500),
				row(12, Weekly, 786_500),
				row(12, Monthly, 923_000),
			},
		},
		{
			ID: "ART-005", Name: "Juego de comedor 6 sillas", Category: "Muebles", CashPrice: 950_000,
			Options: []InstallmentOption{
				row(6, Monthly, 1_149_500),
				row(12, Monthly, 1_349_000),
				row(18, Monthly, 1_548_500),
			},
		},
		{ID: "ART-006", Name: "Colchón de resortes 2 plazas", Category: "Muebles", CashPrice: 720_000},
		{ID: "ART-007", Name: "Motocicleta 110cc", Category: "Motos", CashPrice: 3_900_000},
		{ID: "ART-008", Name: "Microondas 20L", Category: "Línea blanca", CashPrice: 310_000},
	}
}

// row builds a table row whose per-period amount covers the total.
func row(installments int, freq Frequency, total int64) InstallmentOption {
	per := total / int64(installments)
	if total%int64(installments) != 0 {
		per++
	}
	return InstallmentOption{Installments: installments, Frequency: freq, TotalPrice: total, PerPeriod: per}
}
