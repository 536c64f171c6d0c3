package model

// OccurrenceCodeSeed is the SSW occurrence-code table. Loaded once at API
// startup; read-only afterwards.
var OccurrenceCodeSeed = []OccurrenceCode{
	{Code: "1", Description: "mercadoria entregue", Type: "entrega", Process: "entrega"},
	{Code: "2", Description: "mercadoria pre-entregue (mobile)", Type: "préentrega", Process: "entrega"},
	{Code: "3", Description: "mercadoria devolvida ao remetente", Type: "entrega", Process: "devolução"},
	{Code: "4", Description: "destinatario retira", Type: "pendência cliente", Process: "entrega"},
	{Code: "5", Description: "cliente alega mercad desacordo c/ pedido", Type: "pendência cliente", Process: "entrega"},
	{Code: "7", Description: "chegada no cliente destinatário", Type: "informativa", Process: "entrega"},
	{Code: "9", Description: "destinatario desconhecido", Type: "pendência cliente", Process: "entrega"},
	{Code: "10", Description: "local de entrega nao localizado", Type: "pendência cliente", Process: "entrega"},
	{Code: "11", Description: "local de entrega fechado/ausente", Type: "pendência cliente", Process: "entrega"},
	{Code: "13", Description: "entrega prejudicada pelo horario", Type: "pendência transportadora", Process: "entrega"},
	{Code: "14", Description: "nota fiscal entregue", Type: "pendência cliente", Process: "entrega"},
	{Code: "15", Description: "entrega agendada pelo cliente", Type: "pendência cliente", Process: "agendamento"},
	{Code: "16", Description: "entrega aguardando instrucoes", Type: "pendência cliente", Process: "entrega"},
	{Code: "17", Description: "mercadoria entregue no parceiro", Type: "informativa", Process: "entrega"},
	{Code: "18", Description: "mercad repassada p/ prox transportadora", Type: "entrega", Process: "entrega"},
	{Code: "20", Description: "cliente alega falta de mercadoria", Type: "pendência transportadora", Process: "entrega"},
	{Code: "23", Description: "cliente alega mercadoria avariada", Type: "pendência transportadora", Process: "entrega"},
	{Code: "25", Description: "remetente recusa receber devolução", Type: "pendência cliente", Process: "devolução"},
	{Code: "26", Description: "aguardando autorizacao p/ devolucao", Type: "pendência cliente", Process: "devolução"},
	{Code: "27", Description: "devolucao autorizada", Type: "informativa", Process: "devolução"},
	{Code: "28", Description: "aguardando autorizacao p/ reentrega", Type: "pendência cliente", Process: "reentrega"},
	{Code: "31", Description: "primeira tentativa de entrega", Type: "pendência cliente", Process: "reentrega"},
	{Code: "32", Description: "segunda tentativa de entrega", Type: "pendência cliente", Process: "reentrega"},
	{Code: "33", Description: "terceira tentativa de entrega", Type: "pendência cliente", Process: "reentrega"},
	{Code: "34", Description: "mercadoria em conferencia no cliente", Type: "pendência cliente", Process: "entrega"},
	{Code: "35", Description: "aguardando agendamento do cliente", Type: "pendência cliente", Process: "agendamento"},
	{Code: "36", Description: "mercad em devolucao em outra operacao", Type: "baixa", Process: "devolução"},
	{Code: "37", Description: "entrega realizada com ressalva", Type: "pendência transportadora", Process: "entrega"},
	{Code: "38", Description: "cliente recusa/nao pode receber mercad", Type: "pendência cliente", Process: "entrega"},
	{Code: "39", Description: "cliente recusa pagar o frete", Type: "pendência cliente", Process: "geral"},
	{Code: "40", Description: "frete do ctrc de origem recebido", Type: "informativa", Process: "geral"},
	{Code: "45", Description: "carta sinistrada pendência", Type: "cliente", Process: "geral"},
	{Code: "99", Description: "ctrc baixado/cancelado", Type: "baixa", Process: "geral"},
	{Code: "94", Description: "ctrc substituido", Type: "baixa", Process: "geral"},
	{Code: "93", Description: "ctrc emitido para efeito de frete", Type: "baixa", Process: "geral"},
	{Code: "92", Description: "mercadoria indenizada", Type: "baixa", Process: "indenização"},
	{Code: "91", Description: "mercadoria em indenizacao", Type: "pendência transportadora", Process: "indenização"},
	{Code: "86", Description: "estorno de baixa/entrega anterior", Type: "informativa", Process: "geral"},
	{Code: "85", Description: "saida para entrega", Type: "informativa", Process: "operacional"},
	{Code: "84", Description: "chegada na unidade", Type: "informativa", Process: "operacional"},
	{Code: "83", Description: "chegada em unidade", Type: "informativa", Process: "operacional"},
	{Code: "82", Description: "saida de unidade", Type: "informativa", Process: "operacional"},
	{Code: "80", Description: "mercadoria recebida para transporte", Type: "informativa", Process: "operacional"},
	{Code: "79", Description: "coleta reversa agendada", Type: "informativa", Process: "coleta"},
	{Code: "78", Description: "coleta reversa realizada", Type: "informativa", Process: "coleta"},
	{Code: "77", Description: "coleta cancelada", Type: "informativa", Process: "coleta"},
	{Code: "76", Description: "terceira tentativa de coleta", Type: "informativa", Process: "coleta"},
	{Code: "75", Description: "segunda tentativa de coleta", Type: "informativa", Process: "coleta"},
	{Code: "74", Description: "primeira tentativa de coleta", Type: "informativa", Process: "coleta"},
	{Code: "73", Description: "aguardando disponibilidade de balsa", Type: "informativa", Process: "balsa"},
	{Code: "66", Description: "nova mercad enviada pelo remetente", Type: "informativa", Process: "finalizadora"},
	{Code: "65", Description: "notific remet de envio nova mercad", Type: "pendência transportadora", Process: "finalizadora"},
	{Code: "62", Description: "via interditada por fatores naturais", Type: "pendência cliente", Process: "geral"},
	{Code: "61", Description: "mercadoria confiscada pela fiscalização", Type: "baixa", Process: "finalizadora"},
	{Code: "60", Description: "via interditada", Type: "pendência cliente", Process: "geral"},
	{Code: "59", Description: "veiculo aváriado/sinistrado", Type: "pendência transportadora", Process: "geral"},
	{Code: "58", Description: "mercad liberada pela fiscalizacao", Type: "informativa", Process: "geral"},
	{Code: "57", Description: "greve ou paralizacao", Type: "pendência cliente", Process: "geral"},
	{Code: "56", Description: "mercad retida pela fiscalizacao", Type: "pendência cliente", Process: "geral"},
	{Code: "55", Description: "carga roubada", Type: "pendência cliente", Process: "geral"},
	{Code: "54", Description: "embalagem avariada", Type: "pendência transportadora", Process: "geral"},
	{Code: "53", Description: "mercadoria avariada", Type: "pendência transportadora", Process: "geral"},
	{Code: "52", Description: "falta de documentacao", Type: "pendência transportadora", Process: "geral"},
	{Code: "51", Description: "sobra de mercadoria", Type: "pendência transportadora", Process: "geral"},
	{Code: "50", Description: "falta de mercadoria", Type: "pendência transportadora", Process: "geral"},
}
