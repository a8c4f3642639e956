package columns

// Sheet names in the upstream workbook.
const (
	SheetSCs     = "SC's"
	SheetSavings = "Saving"
)

// SC's sheet.
var (
	SCID           = Role{Label: "ID in SC's", Aliases: []string{"ID"}, Position: NoPosition}
	SCRequestDate  = Role{Label: "Date in SC's", Aliases: []string{"Data", "Data da Compra", "Data Compra", "DATA"}, Position: NoPosition}
	SCDescription  = Role{Label: "Description in SC's", Aliases: []string{"Descrição", "DESCRIÇÃO", "Descricao", "Description", "Produto"}, Position: NoPosition}
	SCStatus       = Role{Label: "Status in SC's", Aliases: []string{"Status", "STATUS"}, Position: NoPosition}
	SCPriority     = Role{Label: "Priority in SC's", Aliases: []string{"Prioridade", "PRIORIDADE", "Priority"}, Position: NoPosition}
	SCRequester    = Role{Label: "Requester in SC's", Aliases: []string{"Solicitante", "SOLICITANTE", "Requester"}, Position: NoPosition}
	SCDepartment   = Role{Label: "Department in SC's", Aliases: []string{"Departamento", "DEPARTAMENTO", "Department"}, Position: NoPosition}
	SCCategory     = Role{Label: "Category in SC's", Aliases: []string{"Categoria", "CATEGORIA", "Category"}, Position: 7}
	SCPurchaseDate = Role{Label: "Purchase date in SC's", Aliases: []string{"Data da Compra", "Data Compra", "DATA DA COMPRA"}, Position: NoPosition}
	SCOrderID      = Role{Label: "Order in SC's", Aliases: []string{"Pedido", "PEDIDO", "Número Pedido", "Numero Pedido"}, Position: 9}
	SCLeadTime     = Role{Label: "TMC in SC's", Aliases: []string{"TMC"}, Position: NoPosition}
	SCPaymentTerm  = Role{Label: "PMP in SC's", Aliases: []string{"PMP", "PMPS", "Prazo"}, Position: NoPosition}
	SCAmount       = Role{Label: "Amount in SC's", Aliases: []string{"Valor", "VALOR", "Valor Total", "Total"}, Position: NoPosition}
	SCSupplier     = Role{Label: "Supplier in SC's", Aliases: []string{"Fornecedor", "FORNECEDOR", "Supplier"}, Position: NoPosition}
	SCBuyer        = Role{Label: "Buyer in SC's", Aliases: []string{"Comprador", "COMPRADOR", "Buyer"}, Position: NoPosition}
)

// Saving sheet.
var (
	SavingID               = Role{Label: "ID in Saving", Aliases: []string{"ID"}, Position: NoPosition}
	SavingDate             = Role{Label: "Date in Saving", Aliases: []string{"Data", "DATA", "Data Saving"}, Position: NoPosition}
	SavingOrderID          = Role{Label: "Order in Saving", Aliases: []string{"Número Pedido", "Numero Pedido", "Nº Pedido", "Pedido"}, Position: 2}
	SavingSupplier         = Role{Label: "Supplier in Saving", Aliases: []string{"Fornecedor", "FORNECEDOR", "Supplier"}, Position: NoPosition}
	SavingInitialAmount    = Role{Label: "Initial amount in Saving", Aliases: []string{"VALOR INICIAL", "Valor Inicial", "Valor_Inicial"}, Position: NoPosition}
	SavingFinalAmount      = Role{Label: "Final amount in Saving", Aliases: []string{"VALOR FINAL", "Valor Final", "Valor_Final", "ValorFinal"}, Position: NoPosition}
	SavingReduction        = Role{Label: "Saving amount in Saving", Aliases: []string{"Redução R$", "Reducao R$", "Saving", "Economia", "Redução"}, Position: NoPosition}
	SavingReductionPercent = Role{Label: "Saving percent in Saving", Aliases: []string{"Redução %", "Reducao %", "Saving %"}, Position: NoPosition}
	SavingNotes            = Role{Label: "Negotiation notes in Saving", Aliases: []string{"Comentários Negocição", "Comentários Negociação", "Comentários", "Comentarios"}, Position: NoPosition}
	SavingType             = Role{Label: "Saving type in Saving", Aliases: []string{"Tipo de Saving", "Tipo Saving", "TIPO DE SAVING"}, Position: NoPosition}
	SavingBuyer            = Role{Label: "Buyer in Saving", Aliases: []string{"Comprador", "COMPRADOR", "Buyer", "Responsável"}, Position: NoPosition}
)

// SCRoles and SavingRoles list the roles in canonical column order. Every
// Position above counts from this layout, where the row ID comes first:
// the SC's order id sits at offset 9 (sheet column I), the category at
// offset 7 (sheet column G) and the Saving order id at offset 2 (sheet
// column B). Raw sheets without the ID column are one offset behind.
var (
	SCRoles = []Role{
		SCID, SCRequestDate, SCDescription, SCStatus, SCPriority, SCRequester,
		SCDepartment, SCCategory, SCPurchaseDate, SCOrderID, SCLeadTime,
		SCPaymentTerm, SCAmount, SCSupplier, SCBuyer,
	}
	SavingRoles = []Role{
		SavingID, SavingDate, SavingOrderID, SavingSupplier, SavingInitialAmount,
		SavingFinalAmount, SavingReduction, SavingReductionPercent, SavingNotes,
		SavingType, SavingBuyer,
	}
)
